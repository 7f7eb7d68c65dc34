package protocol

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// dialTimeout bounds connection establishment only; in-flight requests rely
// on the peer closing the connection.
const dialTimeout = 5 * time.Second

// Call performs one request/response exchange against a cluster endpoint:
// dial, send a framed request, read the framed response, unmarshal the OK
// payload into reply. A nil reply discards the payload.
func Call(addr string, msgType int, request, reply any) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	buf, err := Encode(msgType, payload)
	if err != nil {
		return err
	}

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	defer conn.Close()

	if err := WriteFrame(conn, buf); err != nil {
		return err
	}

	respBuf, err := ReadFrame(conn)
	if err != nil {
		return err
	}
	resp, err := DecodeResponse(respBuf)
	if err != nil {
		return err
	}

	if reply == nil {
		return nil
	}
	if err := json.Unmarshal(resp, reply); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
