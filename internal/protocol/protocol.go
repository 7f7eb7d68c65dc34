// Package protocol defines the wire protocol of the Stonetable cluster.
// Used to enforce incoming and outgoing messages between clients, storage
// nodes and the coordinator.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	Unknown = iota
	Register
	Tables
	Create
	Disable
	Drop
	Routes
	Batch
	Scan
)

// maxFrameSize bounds a single request or response frame. A full batch of
// 1000 rows with ten 50-byte qualifiers each stays well under this.
const maxFrameSize = 64 << 20

var (
	// ErrUnknown is returned when the protocol verb is unknown
	ErrUnknown = errors.New("unknown stonetable protocol")
	// ErrFrameTooLarge is returned when a frame exceeds maxFrameSize
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")
)

var verbs = map[int]string{
	Register: "REGISTER",
	Tables:   "TABLES",
	Create:   "CREATE",
	Disable:  "DISABLE",
	Drop:     "DROP",
	Routes:   "ROUTES",
	Batch:    "BATCH",
	Scan:     "SCAN",
}

// Encode prefixes a payload with its protocol verb.
func Encode(msgType int, payload []byte) ([]byte, error) {
	verb, ok := verbs[msgType]
	if !ok {
		return nil, ErrUnknown
	}
	buf := make([]byte, 0, len(verb)+1+len(payload))
	buf = append(buf, verb...)
	buf = append(buf, ' ')
	buf = append(buf, payload...)
	return buf, nil
}

// Decode decodes a buffer into a stonetable protocol message type and returns
// the payload that follows the verb.
func Decode(buf []byte) (int, []byte, error) {
	for msgType, verb := range verbs {
		if len(buf) <= len(verb) {
			continue
		}
		if string(buf[:len(verb)]) == verb && buf[len(verb)] == ' ' {
			return msgType, buf[len(verb)+1:], nil
		}
	}
	return Unknown, nil, ErrUnknown
}

// WriteFrame writes a length-prefixed frame. Requests and responses are
// framed because a batched mutation does not fit a single read buffer.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > maxFrameSize {
		return ErrFrameTooLarge
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("failed to read frame header: %w", err)
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > maxFrameSize {
		return nil, ErrFrameTooLarge
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("failed to read frame payload: %w", err)
	}
	return payload, nil
}
