package synth

import (
	"strings"
	"testing"
)

func TestNamer_Deterministic(t *testing.T) {
	n := NewNamer(NameRules{MaxLength: 63})
	a := n.PhysicalName("root/orders/table")
	b := n.PhysicalName("root/orders/table")
	if a != b {
		t.Fatalf("same identity must yield the same name: %s vs %s", a, b)
	}
}

func TestNamer_DistinctIdentitiesDistinctNames(t *testing.T) {
	n := NewNamer(NameRules{MaxLength: 63})
	// Both sanitize to the same stem; the hash suffix must still separate them.
	a := n.PhysicalName("root/orders-table")
	b := n.PhysicalName("root/orders_table")
	if a == b {
		t.Fatalf("distinct identities collided: %s", a)
	}
}

func TestNamer_MaxLength(t *testing.T) {
	n := NewNamer(NameRules{MaxLength: 24})
	name := n.PhysicalName("root/a-very-long-resource-identity/with/many/segments")
	if len(name) > 24 {
		t.Fatalf("name exceeds max length: %s (%d)", name, len(name))
	}
}

func TestNamer_LegalCharacters(t *testing.T) {
	n := NewNamer(NameRules{MaxLength: 63})
	name := n.PhysicalName("Root/Orders-Table")
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			continue
		}
		t.Fatalf("illegal character %q in %s", r, name)
	}
	if strings.HasPrefix(name, "_") {
		t.Fatalf("name starts with separator: %s", name)
	}
}
