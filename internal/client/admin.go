package client

import (
	"github.com/stonetable/stonetable-db/internal/protocol"
)

// Admin drives table lifecycle operations through the coordination service.
type Admin struct {
	conn *Conn
}

// ListTables returns the names of all tables known to the cluster.
func (a *Admin) ListTables() ([]string, error) {
	var resp protocol.TablesResponse
	if err := a.conn.call(a.conn.coordinatorAddr, protocol.Tables, struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Tables, nil
}

// CreateTable creates a table with its column families and optional
// pre-split key boundaries.
func (a *Admin) CreateTable(name string, families, splits []string) error {
	return a.conn.call(a.conn.coordinatorAddr, protocol.Create, protocol.CreateRequest{
		Table:    name,
		Families: families,
		Splits:   splits,
	}, nil)
}

// DisableTable takes a table offline. A table must be disabled before it can
// be deleted.
func (a *Admin) DisableTable(name string) error {
	return a.conn.call(a.conn.coordinatorAddr, protocol.Disable, protocol.TableRequest{Table: name}, nil)
}

// DeleteTable removes a disabled table and its data from every node.
func (a *Admin) DeleteTable(name string) error {
	return a.conn.call(a.conn.coordinatorAddr, protocol.Drop, protocol.TableRequest{Table: name}, nil)
}
