package protocol

import (
	"errors"
	"fmt"
	"strings"
)

const (
	okPrefix    = "OK "
	errorPrefix = "ERROR "
)

// EncodeOK wraps a successful response payload.
func EncodeOK(payload []byte) []byte {
	buf := make([]byte, 0, len(okPrefix)+len(payload))
	buf = append(buf, okPrefix...)
	buf = append(buf, payload...)
	return buf
}

// EncodeError wraps a server-side failure message.
func EncodeError(err error) []byte {
	return []byte(errorPrefix + err.Error())
}

// DecodeResponse splits a response frame into its payload, surfacing a
// server-side ERROR as a Go error.
func DecodeResponse(buf []byte) ([]byte, error) {
	s := string(buf)
	switch {
	case strings.HasPrefix(s, okPrefix):
		return buf[len(okPrefix):], nil
	case strings.HasPrefix(s, errorPrefix):
		return nil, errors.New(s[len(errorPrefix):])
	default:
		return nil, fmt.Errorf("malformed response: %q", truncate(s, 64))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
