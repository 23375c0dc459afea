package synth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"tessera/internal/metadata"
)

// Namer derives a backend-legal physical name from a node's logical
// identity. Implementations must be deterministic: the same identity yields
// the same name on every run, and distinct identities never collide.
type Namer interface {
	PhysicalName(id metadata.Identity) string
}

// NameRules captures one target's naming constraints.
type NameRules struct {
	MaxLength int
	Separator string
}

// hashedNamer sanitizes the identity segments and appends a short content
// hash of the full identity. The hash keeps names unique even when
// sanitization collapses two identities to the same stem.
type hashedNamer struct {
	rules NameRules
}

func NewNamer(rules NameRules) Namer {
	if rules.Separator == "" {
		rules.Separator = "_"
	}
	return &hashedNamer{rules: rules}
}

func (n *hashedNamer) PhysicalName(id metadata.Identity) string {
	stem := sanitize(string(id), n.rules.Separator)
	suffix := n.rules.Separator + shortHash(string(id))

	if max := n.rules.MaxLength; max > 0 && len(stem)+len(suffix) > max {
		stem = stem[:max-len(suffix)]
		stem = strings.TrimRight(stem, n.rules.Separator)
	}
	return stem + suffix
}

// sanitize lowercases the identity and replaces every character outside
// [a-z0-9] with the separator, collapsing runs.
func sanitize(s, sep string) string {
	var b strings.Builder
	lastSep := false
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			lastSep = false
			continue
		}
		if !lastSep && b.Len() > 0 {
			b.WriteString(sep)
			lastSep = true
		}
	}
	return strings.TrimRight(b.String(), sep)
}

func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}
