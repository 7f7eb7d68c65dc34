// Package client is the Stonetable client library. A Conn talks to the
// coordination service for administrative operations and routes data traffic
// (batched mutations, scans) directly to the storage nodes owning each key
// range.
package client

import (
	"errors"
	"fmt"

	"github.com/stonetable/stonetable-db/internal/protocol"
)

// caller issues one request against a cluster endpoint. Production code uses
// protocol.Call; tests substitute it to fault-inject.
type caller func(addr string, msgType int, request, reply any) error

// Conn is a connection handle to a running cluster.
type Conn struct {
	coordinatorAddr string
	call            caller
}

// Connect verifies the coordination service is reachable and returns a
// connection handle.
func Connect(coordinatorAddr string) (*Conn, error) {
	if coordinatorAddr == "" {
		return nil, errors.New("coordinator address is required")
	}
	c := &Conn{
		coordinatorAddr: coordinatorAddr,
		call:            protocol.Call,
	}
	// a list call doubles as the reachability probe
	if _, err := c.Admin().ListTables(); err != nil {
		return nil, fmt.Errorf("coordination service unreachable at %s: %w", coordinatorAddr, err)
	}
	return c, nil
}

// Admin returns the administrative API of the cluster.
func (c *Conn) Admin() *Admin {
	return &Admin{conn: c}
}

// Table resolves a table's partition map and returns a handle for data
// operations against it. The handle caches the routes; recreate it after
// administrative changes.
func (c *Conn) Table(name string) (*Table, error) {
	var routes protocol.RoutesResponse
	if err := c.call(c.coordinatorAddr, protocol.Routes, protocol.TableRequest{Table: name}, &routes); err != nil {
		return nil, fmt.Errorf("failed to resolve table %s: %w", name, err)
	}
	return &Table{
		name:     name,
		families: routes.Families,
		ranges:   routes.Ranges,
		call:     c.call,
	}, nil
}
