package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tessera/internal/metadata"
)

// TableClient is the uniform key-value contract every physical backend must
// satisfy with identical success and failure semantics. Rows are mappings
// from declared column names to arbitrary structured values; merge semantics
// are per-field last-write-wins. Get and TryGet return only the declared
// value columns; List rows additionally carry the key column so callers can
// address them.
type TableClient interface {
	// Insert creates a row. Fails with ErrAlreadyExists if the key exists.
	Insert(ctx context.Context, key string, row map[string]any) error

	// Update merges the given fields into an existing row. Fails with
	// ErrNotFound if the key is absent.
	Update(ctx context.Context, key string, row map[string]any) error

	// Upsert updates the row if the key exists, otherwise inserts it.
	Upsert(ctx context.Context, key string, row map[string]any) error

	// Delete removes a row. Fails with ErrNotFound if the key is absent.
	Delete(ctx context.Context, key string) error

	// Get returns the row. Fails with ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) (map[string]any, error)

	// TryGet returns the row and true, or nil and false when the key is
	// absent. It never fails on a missing key.
	TryGet(ctx context.Context, key string) (map[string]any, bool, error)

	// List returns all rows in unspecified order.
	List(ctx context.Context) ([]map[string]any, error)
}

// sqlTable services the table contract against one SQL backend through the
// store's dialect. Values are JSON-encoded per column so every backend
// round-trips them identically.
//
// Existence probes are a separate query from the mutation that follows, not
// an atomic conditional write. Concurrent callers racing on the same key may
// both pass the probe and one write silently overwrite the other; this is
// the documented contract, not a bug.
type sqlTable struct {
	store *Store
	table string
	spec  *metadata.TableSpec
}

// NewTableClient returns the table client for the physical table behind the
// given store. The backend is selected by the store's configured driver.
func NewTableClient(s *Store, table string, spec *metadata.TableSpec) TableClient {
	return &sqlTable{store: s, table: table, spec: spec}
}

func (t *sqlTable) Insert(ctx context.Context, key string, row map[string]any) error {
	if err := t.spec.ValidateRow(t.table, row); err != nil {
		return err
	}
	exists, err := t.exists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s[%s]", ErrAlreadyExists, t.table, key)
	}
	return t.insertRow(ctx, key, row)
}

func (t *sqlTable) Update(ctx context.Context, key string, row map[string]any) error {
	if err := t.spec.ValidateRow(t.table, row); err != nil {
		return err
	}
	exists, err := t.exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s[%s]", ErrNotFound, t.table, key)
	}
	return t.updateRow(ctx, key, row)
}

func (t *sqlTable) Upsert(ctx context.Context, key string, row map[string]any) error {
	if err := t.spec.ValidateRow(t.table, row); err != nil {
		return err
	}
	exists, err := t.exists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return t.updateRow(ctx, key, row)
	}
	return t.insertRow(ctx, key, row)
}

func (t *sqlTable) Delete(ctx context.Context, key string) error {
	pb := 0
	sqlStr := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		t.table, t.spec.KeyColumn(), t.placeholder(&pb))
	affected, err := Exec(ctx, t.store.DB, sqlStr, key)
	if err != nil {
		return fmt.Errorf("delete %s[%s]: %w", t.table, key, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s[%s]", ErrNotFound, t.table, key)
	}
	return nil
}

func (t *sqlTable) Get(ctx context.Context, key string) (map[string]any, error) {
	pb := 0
	sqlStr := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		strings.Join(t.spec.ColumnNames(), ", "), t.table, t.spec.KeyColumn(), t.placeholder(&pb))
	raw, err := QueryRow(ctx, t.store.DB, sqlStr, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s[%s]", ErrNotFound, t.table, key)
		}
		return nil, fmt.Errorf("get %s[%s]: %w", t.table, key, err)
	}
	return t.decodeRow(raw)
}

func (t *sqlTable) TryGet(ctx context.Context, key string) (map[string]any, bool, error) {
	row, err := t.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return row, true, nil
}

func (t *sqlTable) List(ctx context.Context) ([]map[string]any, error) {
	cols := append([]string{t.spec.KeyColumn()}, t.spec.ColumnNames()...)
	sqlStr := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), t.table)
	raws, err := QueryRows(ctx, t.store.DB, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.table, err)
	}
	rows := make([]map[string]any, 0, len(raws))
	for _, raw := range raws {
		key := raw[t.spec.KeyColumn()]
		delete(raw, t.spec.KeyColumn())
		row, err := t.decodeRow(raw)
		if err != nil {
			return nil, err
		}
		row[t.spec.KeyColumn()] = asString(key)
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *sqlTable) exists(ctx context.Context, key string) (bool, error) {
	pb := 0
	sqlStr := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = %s",
		t.table, t.spec.KeyColumn(), t.placeholder(&pb))
	rows, err := QueryRows(ctx, t.store.DB, sqlStr, key)
	if err != nil {
		return false, fmt.Errorf("probe %s[%s]: %w", t.table, key, err)
	}
	return len(rows) > 0, nil
}

func (t *sqlTable) insertRow(ctx context.Context, key string, row map[string]any) error {
	cols := []string{t.spec.KeyColumn()}
	args := []any{key}
	pb := 0
	phs := []string{t.placeholder(&pb)}

	for _, c := range t.spec.Columns {
		v, ok := row[c.Name]
		if !ok {
			continue
		}
		encoded, err := encodeValue(v)
		if err != nil {
			return fmt.Errorf("encode %s.%s: %w", t.table, c.Name, err)
		}
		cols = append(cols, c.Name)
		args = append(args, encoded)
		phs = append(phs, t.placeholder(&pb))
	}

	sqlStr := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.table, strings.Join(cols, ", "), strings.Join(phs, ", "))
	if _, err := Exec(ctx, t.store.DB, sqlStr, args...); err != nil {
		mapped := t.store.Dialect.MapError(err)
		if errors.Is(mapped, ErrUniqueViolation) {
			return fmt.Errorf("%w: %s[%s]", ErrAlreadyExists, t.table, key)
		}
		return fmt.Errorf("insert %s[%s]: %w", t.table, key, mapped)
	}
	return nil
}

func (t *sqlTable) updateRow(ctx context.Context, key string, row map[string]any) error {
	var sets []string
	var args []any
	pb := 0

	for _, c := range t.spec.Columns {
		v, ok := row[c.Name]
		if !ok {
			continue
		}
		encoded, err := encodeValue(v)
		if err != nil {
			return fmt.Errorf("encode %s.%s: %w", t.table, c.Name, err)
		}
		args = append(args, encoded)
		sets = append(sets, fmt.Sprintf("%s = %s", c.Name, t.placeholder(&pb)))
	}
	if len(sets) == 0 {
		// Merging zero fields is a successful no-op.
		return nil
	}

	args = append(args, key)
	sqlStr := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		t.table, strings.Join(sets, ", "), t.spec.KeyColumn(), t.placeholder(&pb))
	if _, err := Exec(ctx, t.store.DB, sqlStr, args...); err != nil {
		return fmt.Errorf("update %s[%s]: %w", t.table, key, t.store.Dialect.MapError(err))
	}
	return nil
}

func (t *sqlTable) placeholder(n *int) string {
	*n++
	return t.store.Dialect.Placeholder(*n)
}

// decodeRow turns raw driver values back into row fields. NULL columns are
// absent from the result, which is what makes per-field merges observable.
func (t *sqlTable) decodeRow(raw map[string]any) (map[string]any, error) {
	row := make(map[string]any, len(raw))
	for col, v := range raw {
		if v == nil {
			continue
		}
		decoded, err := decodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("decode %s.%s: %w", t.table, col, err)
		}
		row[col] = decoded
	}
	return row, nil
}

func encodeValue(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeValue(v any) (any, error) {
	var data []byte
	switch s := v.(type) {
	case []byte:
		data = s
	case string:
		data = []byte(s)
	default:
		return v, nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}
