package metadata

import (
	"fmt"
	"sort"
	"strings"
)

// SchemaError reports row fields that are not declared in the table schema.
// Raised both at run time (table client writes) and at synthesis time
// (initial row validation).
type SchemaError struct {
	Table  string
	Fields []string
}

func NewSchemaError(table string, fields []string) *SchemaError {
	sort.Strings(fields)
	return &SchemaError{Table: table, Fields: fields}
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s: undeclared fields: %s", e.Table, strings.Join(e.Fields, ", "))
}
