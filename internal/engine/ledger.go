package engine

import (
	"sort"

	"tessera/internal/metadata"
)

// grantKey is the dedup key for permission grants. Typed fields, not a
// concatenated string, so identities containing each other's prefixes can
// never collide.
type grantKey struct {
	producer  metadata.Identity
	principal metadata.Identity
	role      metadata.Role
}

// GrantResult reports whether a grant call changed the ledger.
type GrantResult struct {
	Created bool
}

// Ledger is the per-session record of permission grants. It deduplicates on
// the exact (producer, principal, role) triple and keeps only the highest
// role per (producer, principal) pair: an upgrade to READWRITE supersedes an
// earlier READ grant rather than leaving both.
type Ledger struct {
	grants map[grantKey]metadata.Grant
}

func NewLedger() *Ledger {
	return &Ledger{grants: make(map[grantKey]metadata.Grant)}
}

// Grant records a (producer, principal, role) triple. Returns Created=false
// when an equal grant already exists. When the new role is READWRITE, a
// dangling READ grant for the same pair is removed.
func (l *Ledger) Grant(producer, principal metadata.Identity, role metadata.Role) GrantResult {
	key := grantKey{producer: producer, principal: principal, role: role}
	if _, ok := l.grants[key]; ok {
		return GrantResult{Created: false}
	}
	if role == metadata.RoleReadWrite {
		delete(l.grants, grantKey{producer: producer, principal: principal, role: metadata.RoleRead})
	} else {
		// A READ request is already covered by an existing READWRITE grant.
		if _, ok := l.grants[grantKey{producer: producer, principal: principal, role: metadata.RoleReadWrite}]; ok {
			return GrantResult{Created: false}
		}
	}
	l.grants[key] = metadata.Grant{Producer: producer, Principal: principal, Role: role}
	return GrantResult{Created: true}
}

// Grants returns a snapshot of all grants, sorted by (producer, principal,
// role) so synthesis output is stable across runs.
func (l *Ledger) Grants() []metadata.Grant {
	out := make([]metadata.Grant, 0, len(l.grants))
	for _, g := range l.grants {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Producer != out[j].Producer {
			return out[i].Producer < out[j].Producer
		}
		if out[i].Principal != out[j].Principal {
			return out[i].Principal < out[j].Principal
		}
		return out[i].Role < out[j].Role
	})
	return out
}

// GrantsFor returns the sorted grants whose producer matches the identity.
func (l *Ledger) GrantsFor(producer metadata.Identity) []metadata.Grant {
	var out []metadata.Grant
	for _, g := range l.Grants() {
		if g.Producer == producer {
			out = append(out, g)
		}
	}
	return out
}

// GrantsInvolving returns the sorted grants where the identity is either
// the producer (its access policies) or the principal (the permissions its
// runtime needs wired in).
func (l *Ledger) GrantsInvolving(id metadata.Identity) []metadata.Grant {
	var out []metadata.Grant
	for _, g := range l.Grants() {
		if g.Producer == id || g.Principal == id {
			out = append(out, g)
		}
	}
	return out
}

// Len returns the number of grants currently held.
func (l *Ledger) Len() int { return len(l.grants) }
