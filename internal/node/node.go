// Package node wires a storage node together: its WAL-backed engine and the
// TCP server that exposes it, plus registration with the coordination
// service.
package node

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/stonetable/stonetable-db/internal/engine"
	"github.com/stonetable/stonetable-db/internal/protocol"
	"github.com/stonetable/stonetable-db/internal/server"
	"github.com/stonetable/stonetable-db/internal/wal"
)

type Node struct {
	id              string
	engine          *engine.Engine
	srv             *server.Server
	coordinatorAddr string
}

type Config struct {
	Address string
	// Port may be 0 for an ephemeral port.
	Port int
	// Path is the node's working directory (WAL and snapshot live under it).
	Path string
	// CoordinatorAddr is the coordination service endpoint to register with.
	CoordinatorAddr string
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Address == "" {
		errGrp = append(errGrp, fmt.Errorf("address required"))
	}
	if c.Path == "" {
		errGrp = append(errGrp, fmt.Errorf("path required"))
	}
	if c.CoordinatorAddr == "" {
		errGrp = append(errGrp, fmt.Errorf("coordinator address required"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Node, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()

	walManager, err := wal.New(&wal.Config{Path: cfg.Path})
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(&engine.Config{WAL: walManager, Path: cfg.Path})
	if err != nil {
		return nil, err
	}

	srv, err := server.New(&server.Config{
		Name:    "Storage Node " + id[:8],
		Address: cfg.Address,
		Port:    cfg.Port,
		Handler: eng,
	})
	if err != nil {
		return nil, err
	}

	return &Node{
		id:              id,
		engine:          eng,
		srv:             srv,
		coordinatorAddr: cfg.CoordinatorAddr,
	}, nil
}

// ID returns the node's cluster-unique identifier.
func (n *Node) ID() string {
	return n.id
}

// Addr returns the node's serving address, resolving ephemeral ports.
func (n *Node) Addr() string {
	return n.srv.Addr()
}

// Start restores engine state, registers with the coordinator and serves
// until Stop closes the listener.
func (n *Node) Start() error {
	if err := n.engine.Start(); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	if err := protocol.Call(n.coordinatorAddr, protocol.Register, protocol.RegisterRequest{
		ID:      n.id,
		Address: n.Addr(),
	}, nil); err != nil {
		return fmt.Errorf("failed to register with coordinator: %w", err)
	}
	log.Info().Msgf("Node %s serving at %s", n.id[:8], n.Addr())

	return n.srv.Start()
}

// Stop shuts the server down, then snapshots and closes the engine.
func (n *Node) Stop() error {
	var errGrp []error
	if err := n.srv.Stop(); err != nil {
		errGrp = append(errGrp, err)
	}
	if err := n.engine.Stop(); err != nil {
		errGrp = append(errGrp, err)
	}
	return errors.Join(errGrp...)
}

func (n *Node) Name() string {
	return n.srv.Name()
}
