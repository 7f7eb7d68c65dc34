// Package coordinator implements the cluster's coordination service: the
// node registry, table descriptors and the partition map. Storage nodes
// register with it at startup; clients ask it for table routes and drive all
// administrative operations through it.
package coordinator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/stonetable/stonetable-db/internal/server"
	"github.com/stonetable/stonetable-db/internal/stonetable"
)

//go:generate mockgen -destination=dialer_mock.go -package=coordinator -source=coordinator.go

// nodeDialer issues one request against a storage node. It exists so table
// drops can fan out to nodes, and so tests can intercept that traffic.
type nodeDialer interface {
	Call(addr string, msgType int, request, reply any) error
}

type tableState struct {
	desc   stonetable.TableDescriptor
	ranges []stonetable.KeyRange
}

type Coordinator struct {
	mu     sync.RWMutex
	nodes  map[string]string // node ID -> serving address
	order  []string          // addresses in registration order, for assignment
	tables map[string]*tableState
	dialer nodeDialer
	srv    *server.Server
}

type Config struct {
	Address string
	// Port may be 0 for an ephemeral port.
	Port int
	// Dialer is optional; the default dials nodes over TCP.
	Dialer nodeDialer
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Address == "" {
		errGrp = append(errGrp, fmt.Errorf("address required"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Coordinator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Coordinator{
		nodes:  make(map[string]string),
		tables: make(map[string]*tableState),
		dialer: cfg.Dialer,
	}
	if c.dialer == nil {
		c.dialer = tcpDialer{}
	}

	srv, err := server.New(&server.Config{
		Name:    "Coordination Service",
		Address: cfg.Address,
		Port:    cfg.Port,
		Handler: c,
	})
	if err != nil {
		return nil, err
	}
	c.srv = srv
	return c, nil
}

// Addr returns the coordinator's bound address, resolving ephemeral ports.
func (c *Coordinator) Addr() string {
	return c.srv.Addr()
}

// Start serves coordination traffic until Stop closes the listener.
func (c *Coordinator) Start() error {
	return c.srv.Start()
}

func (c *Coordinator) Stop() error {
	return c.srv.Stop()
}

func (c *Coordinator) Name() string {
	return "Coordination Service"
}

// NodeCount returns the number of registered storage nodes.
func (c *Coordinator) NodeCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.nodes)
}

// register adds a storage node to the registry. Re-registration under the
// same ID (a node restart) keeps its position in the assignment order.
func (c *Coordinator) register(id, address string) error {
	if id == "" || address == "" {
		return fmt.Errorf("node id and address are required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.nodes[id]; ok {
		for i, addr := range c.order {
			if addr == prev {
				c.order[i] = address
				break
			}
		}
	} else {
		c.order = append(c.order, address)
	}
	c.nodes[id] = address
	return nil
}
