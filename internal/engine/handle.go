package engine

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
	"github.com/stonetable/stonetable-db/internal/protocol"
)

// Handle implements the server.handler interface, allowing the engine to
// respond to incoming node connections. Each connection carries exactly one
// framed request and receives one framed response.
func (e *Engine) Handle(conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing connection")
		}
	}()

	buf, err := protocol.ReadFrame(conn)
	if err != nil {
		log.Warn().Err(err).Msg("Read error")
		return
	}

	msgType, payload, decodeErr := protocol.Decode(buf)
	if decodeErr != nil {
		e.respondError(conn, decodeErr)
		return
	}

	var response []byte
	switch msgType {
	case protocol.Batch:
		var req protocol.BatchRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			e.respondError(conn, fmt.Errorf("malformed batch request: %w", err))
			return
		}
		results, err := e.ApplyBatch(req.Table, req.Rows)
		if err != nil {
			e.respondError(conn, err)
			return
		}
		response, _ = json.Marshal(protocol.BatchResponse{Results: results})

	case protocol.Scan:
		var req protocol.ScanRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			e.respondError(conn, fmt.Errorf("malformed scan request: %w", err))
			return
		}
		rows, more := e.Scan(&req)
		response, _ = json.Marshal(protocol.ScanResponse{Rows: rows, More: more})

	case protocol.Drop:
		var req protocol.TableRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			e.respondError(conn, fmt.Errorf("malformed drop request: %w", err))
			return
		}
		if err := e.Drop(req.Table); err != nil {
			e.respondError(conn, err)
			return
		}
		response = []byte(`{}`)

	default:
		e.respondError(conn, fmt.Errorf("operation not supported by storage node"))
		return
	}

	if err := protocol.WriteFrame(conn, protocol.EncodeOK(response)); err != nil {
		log.Warn().Err(err).Msg("Error writing response")
	}
}

func (e *Engine) respondError(conn net.Conn, cause error) {
	if err := protocol.WriteFrame(conn, protocol.EncodeError(cause)); err != nil {
		log.Warn().Err(err).Msg("Failed to write error response")
	}
}
