// Package harness implements the bulk load-and-verify pipeline: boot an
// embedded cluster, ensure a fresh table, write synthetic rows in batches,
// scan everything back and diff observed keys against expected ones.
package harness

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/stonetable/stonetable-db/internal/client"
	"github.com/stonetable/stonetable-db/internal/cluster"
	"github.com/stonetable/stonetable-db/internal/config"
)

// Harness owns the run's resources: the embedded cluster and the client
// connection. It is passed explicitly through each phase and torn down by
// its owner; there is no shared global fixture.
type Harness struct {
	cfg     *config.Config
	workDir string
	cluster *cluster.Cluster
	conn    *client.Conn
}

func New(cfg *config.Config, workDir string) (*Harness, error) {
	var errGrp []error
	if cfg == nil {
		errGrp = append(errGrp, errors.New("config is required"))
	} else if err := cfg.Validate(); err != nil {
		errGrp = append(errGrp, err)
	}
	if workDir == "" {
		errGrp = append(errGrp, errors.New("working directory is required"))
	}
	if err := errors.Join(errGrp...); err != nil {
		return nil, err
	}
	return &Harness{cfg: cfg, workDir: workDir}, nil
}

// Bootstrap clears the working directory, starts the embedded cluster and
// connects to its coordination service. On failure the caller still calls
// Teardown.
func (h *Harness) Bootstrap() error {
	c, err := cluster.New(&cluster.Config{
		Path:  h.workDir,
		Nodes: h.cfg.Nodes,
	})
	if err != nil {
		return fmt.Errorf("failed to create cluster: %w", err)
	}
	h.cluster = c

	if err := c.Start(); err != nil {
		return fmt.Errorf("failed to start cluster: %w", err)
	}

	conn, err := client.Connect(c.CoordinatorAddr())
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	h.conn = conn
	return nil
}

// Conn exposes the cluster connection to the individual phases.
func (h *Harness) Conn() *client.Conn {
	return h.conn
}

// Teardown stops the cluster. Safe after a partial Bootstrap and safe to
// call more than once.
func (h *Harness) Teardown() error {
	if h.cluster == nil {
		return nil
	}
	return h.cluster.Stop()
}

// Run drives the schema, write and verify phases and returns the
// verification report. The table handle of each phase is closed on every
// exit path.
func (h *Harness) Run() (*Report, error) {
	if h.conn == nil {
		return nil, errors.New("harness is not bootstrapped")
	}

	schema := NewSchemaManager(h.conn.Admin())
	if err := schema.EnsureTable(h.cfg.Table, []string{h.cfg.ColumnFamily}, SplitBoundaries()); err != nil {
		return nil, err
	}

	expected, err := h.writePhase()
	if err != nil {
		return nil, err
	}

	return h.verifyPhase(expected)
}

func (h *Harness) writePhase() (*KeySet, error) {
	table, err := h.conn.Table(h.cfg.Table)
	if err != nil {
		return nil, err
	}
	defer func() {
		log.Info().Msg("Closing table used for writes")
		_ = table.Close()
	}()

	writer, err := NewBulkWriter(&WriterConfig{
		Table:         table,
		ColumnFamily:  h.cfg.ColumnFamily,
		BatchSize:     h.cfg.BatchSize,
		ValueSize:     h.cfg.ValueSize,
		ProgressEvery: h.cfg.ProgressEvery,
		Seed:          1,
	})
	if err != nil {
		return nil, err
	}

	_, expected, err := writer.Write(h.cfg.Rows, h.cfg.ColumnsPerRow)
	return expected, err
}

func (h *Harness) verifyPhase(expected *KeySet) (*Report, error) {
	table, err := h.conn.Table(h.cfg.Table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = table.Close() }()

	verifier := NewBulkVerifier(h.cfg.ProgressEvery)
	return verifier.Verify(table.Scanner(h.cfg.ColumnFamily), expected)
}
