// Package cluster boots an ephemeral Stonetable cluster inside the current
// process: one coordination service plus a configurable number of storage
// nodes, all on loopback ports, rooted in a throwaway working directory.
package cluster

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/stonetable/stonetable-db/internal/coordinator"
	"github.com/stonetable/stonetable-db/internal/node"
)

const (
	// minNodes is the smallest cluster worth testing against: anything less
	// cannot exercise cross-node routing.
	minNodes = 2

	startupTimeout = 10 * time.Second
)

type Cluster struct {
	path            string
	nodeCount       int
	coordinatorPort int
	coordinator     *coordinator.Coordinator
	nodes           []*node.Node
	failChan        chan error
	stopCalled      *atomic.Bool
}

type Config struct {
	// Path is the root storage directory. It is cleared on Start so a stale
	// previous run can never leak state into this one.
	Path string
	// Nodes is the number of storage nodes; it is clamped up to the minimum.
	Nodes int
	// CoordinatorPort is the coordination-service client port; 0 binds an
	// ephemeral port.
	CoordinatorPort int
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Path == "" {
		errGrp = append(errGrp, errors.New("path is required"))
	}
	return errors.Join(errGrp...)
}

func New(cfg *Config) (*Cluster, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	nodes := cfg.Nodes
	if nodes < minNodes {
		nodes = minNodes
	}

	return &Cluster{
		path:            cfg.Path,
		nodeCount:       nodes,
		coordinatorPort: cfg.CoordinatorPort,
		failChan:        make(chan error, nodes+1),
		stopCalled:      &atomic.Bool{},
	}, nil
}

// Start clears the working directory, brings up the coordinator and all
// storage nodes, and returns only once every node is discoverable through
// the coordination service. On failure the caller still owns teardown: Stop
// is safe after a partial start.
func (c *Cluster) Start() error {
	if err := os.RemoveAll(c.path); err != nil {
		return fmt.Errorf("failed to clear working directory: %w", err)
	}
	if err := os.MkdirAll(c.path, 0750); err != nil {
		return fmt.Errorf("failed to create working directory: %w", err)
	}

	coord, err := coordinator.New(&coordinator.Config{
		Address: "127.0.0.1",
		Port:    c.coordinatorPort,
	})
	if err != nil {
		return fmt.Errorf("failed to create coordinator: %w", err)
	}
	c.coordinator = coord
	go func() {
		if err := coord.Start(); err != nil {
			c.failChan <- fmt.Errorf("coordinator failed: %w", err)
		}
	}()

	for i := 0; i < c.nodeCount; i++ {
		n, err := node.New(&node.Config{
			Address:         "127.0.0.1",
			Port:            0,
			Path:            filepath.Join(c.path, fmt.Sprintf("node-%d", i)),
			CoordinatorAddr: coord.Addr(),
		})
		if err != nil {
			return fmt.Errorf("failed to create node %d: %w", i, err)
		}
		c.nodes = append(c.nodes, n)
		go func(n *node.Node) {
			if err := n.Start(); err != nil {
				c.failChan <- fmt.Errorf("node %s failed: %w", n.ID(), err)
			}
		}(n)
	}

	// the service endpoint is usable once every node has registered
	deadline := time.After(startupTimeout)
	for coord.NodeCount() < c.nodeCount {
		select {
		case err := <-c.failChan:
			return err
		case <-deadline:
			return fmt.Errorf("cluster did not become ready within %s", startupTimeout)
		case <-time.After(10 * time.Millisecond):
		}
	}

	log.Info().Msgf("Cluster ready: coordinator at %s, %d nodes", coord.Addr(), c.nodeCount)
	return nil
}

// CoordinatorAddr returns the coordination-service endpoint clients connect
// to. Only valid after Start.
func (c *Cluster) CoordinatorAddr() string {
	return c.coordinator.Addr()
}

// Stop shuts down the storage nodes first, then the coordination layer. It
// tolerates a partially failed Start and repeated calls.
func (c *Cluster) Stop() error {
	if c.stopCalled.Swap(true) {
		return nil
	}

	var errGrp []error
	for _, n := range c.nodes {
		if err := n.Stop(); err != nil {
			errGrp = append(errGrp, err)
		}
	}
	if c.coordinator != nil {
		if err := c.coordinator.Stop(); err != nil {
			errGrp = append(errGrp, err)
		}
	}
	return errors.Join(errGrp...)
}

func (c *Cluster) Name() string {
	return "Embedded Cluster"
}
