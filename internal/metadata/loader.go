package metadata

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadTableSpec reads a table schema definition from a JSON file and
// validates it. The file format matches the "schema" block of a table
// resource in a graph definition.
func LoadTableSpec(path string) (*TableSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table spec: %w", err)
	}

	var spec TableSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse table spec %s: %w", path, err)
	}
	if err := spec.CheckSpec(); err != nil {
		return nil, fmt.Errorf("invalid table spec %s: %w", path, err)
	}
	return &spec, nil
}
