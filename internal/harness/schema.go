package harness

import (
	"fmt"
	"slices"
)

//go:generate mockgen -destination=schema_mock.go -package=harness -source=schema.go

// adminAPI is the administrative surface the schema manager drives. The
// client's Admin satisfies it.
type adminAPI interface {
	ListTables() ([]string, error)
	CreateTable(name string, families, splits []string) error
	DisableTable(name string) error
	DeleteTable(name string) error
}

// SchemaManager makes sure the target table exists freshly created before
// a run. Administrative failures are fatal: they are returned as-is with no
// retry.
type SchemaManager struct {
	admin adminAPI
}

func NewSchemaManager(admin adminAPI) *SchemaManager {
	return &SchemaManager{admin: admin}
}

// EnsureTable nukes any stale table of the same name (disable first, the
// cluster's lifecycle rules require it before delete) then creates it with
// the given column families and optional pre-split boundaries.
func (m *SchemaManager) EnsureTable(name string, families, splits []string) error {
	tables, err := m.admin.ListTables()
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	if slices.Contains(tables, name) {
		if err := m.admin.DisableTable(name); err != nil {
			return fmt.Errorf("failed to disable table %s: %w", name, err)
		}
		if err := m.admin.DeleteTable(name); err != nil {
			return fmt.Errorf("failed to delete table %s: %w", name, err)
		}
	}

	if err := m.admin.CreateTable(name, families, splits); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}
	return nil
}
