package metadata

import "fmt"

// Column describes one declared field of a table.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"` // string, int, float, boolean, json, timestamp
}

// TableSpec is the logical configuration of a table node: a primary key
// column plus the declared value columns. Rows written through the table
// contract must validate against Columns.
type TableSpec struct {
	PrimaryKey  string           `json:"primary_key"`
	Columns     []Column         `json:"columns"`
	InitialRows []map[string]any `json:"initial_rows,omitempty"`
}

// DefaultPrimaryKey is used when a table spec does not name a key column.
const DefaultPrimaryKey = "key"

// KeyColumn returns the primary key column name, defaulted.
func (s *TableSpec) KeyColumn() string {
	if s.PrimaryKey == "" {
		return DefaultPrimaryKey
	}
	return s.PrimaryKey
}

// GetColumn returns a pointer to the column with the given name, or nil.
func (s *TableSpec) GetColumn(name string) *Column {
	for i := range s.Columns {
		if s.Columns[i].Name == name {
			return &s.Columns[i]
		}
	}
	return nil
}

// HasColumn returns true if the spec declares a column with the given name.
func (s *TableSpec) HasColumn(name string) bool {
	return s.GetColumn(name) != nil
}

// ColumnNames returns all declared column names in declaration order.
func (s *TableSpec) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// CheckSpec validates the spec itself: at least one column, no duplicate
// column names, no column shadowing the key column.
func (s *TableSpec) CheckSpec() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("table declares no columns")
	}
	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name == "" {
			return fmt.Errorf("table has an unnamed column")
		}
		if c.Name == s.KeyColumn() {
			return fmt.Errorf("column %q collides with the key column", c.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// ValidateRow checks a row against the declared columns. Fields outside the
// schema fail with a SchemaError naming every undeclared field.
func (s *TableSpec) ValidateRow(table string, row map[string]any) error {
	var bad []string
	for field := range row {
		if field == s.KeyColumn() {
			continue
		}
		if !s.HasColumn(field) {
			bad = append(bad, field)
		}
	}
	if len(bad) > 0 {
		return NewSchemaError(table, bad)
	}
	return nil
}
