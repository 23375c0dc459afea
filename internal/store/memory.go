package store

import (
	"context"
	"fmt"
	"sync"

	"tessera/internal/metadata"
)

// memTable is the in-memory TableClient. It backs the gateway's "memory"
// driver for local development and the package tests; the contract semantics
// match the SQL clients exactly.
type memTable struct {
	mu    sync.RWMutex
	table string
	spec  *metadata.TableSpec
	rows  map[string]map[string]any
}

// NewMemoryTable returns an in-memory table client.
func NewMemoryTable(table string, spec *metadata.TableSpec) TableClient {
	return &memTable{
		table: table,
		spec:  spec,
		rows:  make(map[string]map[string]any),
	}
}

func (t *memTable) Insert(ctx context.Context, key string, row map[string]any) error {
	if err := t.spec.ValidateRow(t.table, row); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[key]; ok {
		return fmt.Errorf("%w: %s[%s]", ErrAlreadyExists, t.table, key)
	}
	t.rows[key] = t.copyValues(row)
	return nil
}

func (t *memTable) Update(ctx context.Context, key string, row map[string]any) error {
	if err := t.spec.ValidateRow(t.table, row); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	existing, ok := t.rows[key]
	if !ok {
		return fmt.Errorf("%w: %s[%s]", ErrNotFound, t.table, key)
	}
	for k, v := range row {
		if k == t.spec.KeyColumn() {
			continue
		}
		existing[k] = v
	}
	return nil
}

func (t *memTable) Upsert(ctx context.Context, key string, row map[string]any) error {
	if err := t.spec.ValidateRow(t.table, row); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	existing, ok := t.rows[key]
	if !ok {
		t.rows[key] = t.copyValues(row)
		return nil
	}
	for k, v := range row {
		if k == t.spec.KeyColumn() {
			continue
		}
		existing[k] = v
	}
	return nil
}

func (t *memTable) Delete(ctx context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[key]; !ok {
		return fmt.Errorf("%w: %s[%s]", ErrNotFound, t.table, key)
	}
	delete(t.rows, key)
	return nil
}

func (t *memTable) Get(ctx context.Context, key string) (map[string]any, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s[%s]", ErrNotFound, t.table, key)
	}
	return copyRow(row), nil
}

func (t *memTable) TryGet(ctx context.Context, key string) (map[string]any, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[key]
	if !ok {
		return nil, false, nil
	}
	return copyRow(row), true, nil
}

func (t *memTable) List(ctx context.Context) ([]map[string]any, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]map[string]any, 0, len(t.rows))
	for key, row := range t.rows {
		r := copyRow(row)
		r[t.spec.KeyColumn()] = key
		out = append(out, r)
	}
	return out, nil
}

func copyRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// copyValues copies the declared value fields of an incoming row. A field
// named like the key column is legal input but is never stored: the key
// lives outside the row, matching the SQL client.
func (t *memTable) copyValues(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if k == t.spec.KeyColumn() {
			continue
		}
		out[k] = v
	}
	return out
}
