package store

import (
	"context"
	"fmt"
	"strings"

	"tessera/internal/metadata"
)

// EnsureTable creates the physical table for a spec if it does not exist.
// Called at gateway startup; synthesis itself never touches a backend.
func EnsureTable(ctx context.Context, s *Store, table string, spec *metadata.TableSpec) error {
	exists, err := s.Dialect.TableExists(ctx, s.DB, table)
	if err != nil {
		return fmt.Errorf("check table exists: %w", err)
	}
	if exists {
		return nil
	}

	cols := []string{spec.KeyColumn() + " TEXT PRIMARY KEY"}
	for _, c := range spec.Columns {
		cols = append(cols, c.Name+" "+s.Dialect.ColumnType(c))
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", table, strings.Join(cols, ",\n  "))
	if _, err := s.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}
