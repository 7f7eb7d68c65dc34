package coordinator

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/stonetable/stonetable-db/internal/protocol"
	"github.com/stonetable/stonetable-db/internal/stonetable"
)

// tcpDialer is the production nodeDialer.
type tcpDialer struct{}

func (tcpDialer) Call(addr string, msgType int, request, reply any) error {
	return protocol.Call(addr, msgType, request, reply)
}

// listTables returns all table names in sorted order.
func (c *Coordinator) listTables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// createTable registers a table and assigns its key ranges across the
// registered nodes. Split boundaries produce len(splits)+1 contiguous
// ranges, handed out round-robin in node registration order.
func (c *Coordinator) createTable(name string, families, splits []string) error {
	if name == "" {
		return fmt.Errorf("table name is required")
	}
	if len(families) == 0 {
		return fmt.Errorf("at least one column family is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[name]; exists {
		return fmt.Errorf("table already exists: %s", name)
	}
	if len(c.order) == 0 {
		return fmt.Errorf("no storage nodes registered")
	}

	boundaries := normalizeSplits(splits)
	ranges := make([]stonetable.KeyRange, 0, len(boundaries)+1)
	start := ""
	for i := 0; i <= len(boundaries); i++ {
		end := ""
		if i < len(boundaries) {
			end = boundaries[i]
		}
		ranges = append(ranges, stonetable.KeyRange{
			Start: start,
			End:   end,
			Node:  c.order[i%len(c.order)],
		})
		start = end
	}

	c.tables[name] = &tableState{
		desc: stonetable.TableDescriptor{
			Name:     name,
			Families: append([]string(nil), families...),
			Splits:   boundaries,
		},
		ranges: ranges,
	}
	log.Info().Msgf("Created table %s with %d ranges over %d nodes", name, len(ranges), len(c.order))
	return nil
}

// normalizeSplits sorts boundaries and drops duplicates and empties; a
// degenerate boundary set still yields a valid (if unbalanced) range map.
func normalizeSplits(splits []string) []string {
	seen := make(map[string]struct{}, len(splits))
	out := make([]string, 0, len(splits))
	for _, s := range splits {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// disableTable takes a table offline. The engine's lifecycle rules require a
// table to be disabled before it can be deleted.
func (c *Coordinator) disableTable(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tables[name]
	if !ok {
		return fmt.Errorf("table not found: %s", name)
	}
	if t.desc.Disabled {
		return fmt.Errorf("table already disabled: %s", name)
	}
	t.desc.Disabled = true
	return nil
}

// dropTable deletes a disabled table and fans the drop out to every node
// hosting one of its ranges. A node that cannot be reached is logged and
// skipped; the metadata is removed regardless.
func (c *Coordinator) dropTable(name string) error {
	c.mu.Lock()
	t, ok := c.tables[name]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("table not found: %s", name)
	}
	if !t.desc.Disabled {
		c.mu.Unlock()
		return fmt.Errorf("table must be disabled before delete: %s", name)
	}
	delete(c.tables, name)
	c.mu.Unlock()

	for _, addr := range distinctNodes(t.ranges) {
		if err := c.dialer.Call(addr, protocol.Drop, protocol.TableRequest{Table: name}, nil); err != nil {
			log.Error().Err(err).Msgf("Failed to drop table %s on node %s", name, addr)
		}
	}
	return nil
}

// routes returns the partition map of an enabled table.
func (c *Coordinator) routes(name string) (*protocol.RoutesResponse, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("table not found: %s", name)
	}
	if t.desc.Disabled {
		return nil, fmt.Errorf("table is disabled: %s", name)
	}
	return &protocol.RoutesResponse{
		Table:    name,
		Families: append([]string(nil), t.desc.Families...),
		Ranges:   append([]stonetable.KeyRange(nil), t.ranges...),
	}, nil
}

func distinctNodes(ranges []stonetable.KeyRange) []string {
	seen := make(map[string]struct{}, len(ranges))
	out := make([]string, 0, len(ranges))
	for _, r := range ranges {
		if _, dup := seen[r.Node]; dup {
			continue
		}
		seen[r.Node] = struct{}{}
		out = append(out, r.Node)
	}
	return out
}
