package metadata

import (
	"fmt"
	"strings"
)

// Identity is the stable hierarchical address of a resource node,
// e.g. "root/orders/table". Segments are slash-separated.
type Identity string

// Validate checks that the identity is non-empty and every segment is
// lowercase alphanumeric with underscores or hyphens.
func (id Identity) Validate() error {
	if id == "" {
		return fmt.Errorf("identity is empty")
	}
	for _, seg := range strings.Split(string(id), "/") {
		if seg == "" {
			return fmt.Errorf("identity %q has an empty segment", id)
		}
		for _, r := range seg {
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r == '-' {
				continue
			}
			return fmt.Errorf("identity %q has illegal character %q", id, r)
		}
	}
	return nil
}

// Base returns the last segment of the identity.
func (id Identity) Base() string {
	s := string(id)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func (id Identity) String() string { return string(id) }
