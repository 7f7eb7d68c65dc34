package coordinator

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
	"github.com/stonetable/stonetable-db/internal/protocol"
)

// Handle implements the server.handler interface for coordination traffic.
// Each connection carries one framed request and receives one framed
// response.
func (c *Coordinator) Handle(conn net.Conn) {
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
		c.respondError(conn, decodeErr)
		return
	}

	var response []byte
	switch msgType {
	case protocol.Register:
		var req protocol.RegisterRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			c.respondError(conn, fmt.Errorf("malformed register request: %w", err))
			return
		}
		if err := c.register(req.ID, req.Address); err != nil {
			c.respondError(conn, err)
			return
		}
		log.Info().Msgf("Registered node %s at %s", req.ID, req.Address)
		response = []byte(`{}`)

	case protocol.Tables:
		response, _ = json.Marshal(protocol.TablesResponse{Tables: c.listTables()})

	case protocol.Create:
		var req protocol.CreateRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			c.respondError(conn, fmt.Errorf("malformed create request: %w", err))
			return
		}
		if err := c.createTable(req.Table, req.Families, req.Splits); err != nil {
			c.respondError(conn, err)
			return
		}
		response = []byte(`{}`)

	case protocol.Disable:
		var req protocol.TableRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			c.respondError(conn, fmt.Errorf("malformed disable request: %w", err))
			return
		}
		if err := c.disableTable(req.Table); err != nil {
			c.respondError(conn, err)
			return
		}
		response = []byte(`{}`)

	case protocol.Drop:
		var req protocol.TableRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			c.respondError(conn, fmt.Errorf("malformed drop request: %w", err))
			return
		}
		if err := c.dropTable(req.Table); err != nil {
			c.respondError(conn, err)
			return
		}
		response = []byte(`{}`)

	case protocol.Routes:
		var req protocol.TableRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			c.respondError(conn, fmt.Errorf("malformed routes request: %w", err))
			return
		}
		r, err := c.routes(req.Table)
		if err != nil {
			c.respondError(conn, err)
			return
		}
		response, _ = json.Marshal(r)

	default:
		c.respondError(conn, fmt.Errorf("operation not supported by coordinator"))
		return
	}

	if err := protocol.WriteFrame(conn, protocol.EncodeOK(response)); err != nil {
		log.Warn().Err(err).Msg("Error writing response")
	}
}

func (c *Coordinator) respondError(conn net.Conn, cause error) {
	if err := protocol.WriteFrame(conn, protocol.EncodeError(cause)); err != nil {
		log.Warn().Err(err).Msg("Failed to write error response")
	}
}
