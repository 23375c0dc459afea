package synth

import (
	"fmt"

	"tessera/internal/engine"
	"tessera/internal/metadata"
)

// SQLite synthesizes templates for the sqlite target: tables become SQLite
// database files served through the table gateway, and grants become gateway
// policies enforced via role-scoped tokens, since SQLite itself has no
// principals. The sqlite template vocabulary has no seed-data primitive, so
// tables configured with initial rows fail synthesis.
type SQLite struct {
	namer Namer
}

func NewSQLite() *SQLite {
	return &SQLite{namer: NewNamer(NameRules{MaxLength: 64})}
}

func (s *SQLite) Target() string { return "sqlite" }

func (s *SQLite) Synthesize(node *metadata.Node, grants []metadata.Grant) ([]engine.Object, error) {
	switch node.Kind {
	case metadata.KindTable:
		return s.table(node, producerGrants(node, grants))
	case metadata.KindFunction:
		return []engine.Object{functionObject(s.namer, node, principalGrants(node, grants))}, nil
	default:
		return nil, engine.UnknownKindError(string(node.Kind), node.ID.String())
	}
}

func (s *SQLite) table(node *metadata.Node, grants []metadata.Grant) ([]engine.Object, error) {
	spec := node.Table
	if len(spec.InitialRows) > 0 {
		return nil, engine.UnsupportedFeatureError(node.ID.String(), s.Target(), "pre-seeded initial rows")
	}

	name := s.namer.PhysicalName(node.ID)
	node.BindPhysicalName(name)

	columns := []map[string]any{
		{"name": spec.KeyColumn(), "type": "string", "primary_key": true},
	}
	for _, c := range spec.Columns {
		columns = append(columns, map[string]any{"name": c.Name, "type": c.Type})
	}

	objs := []engine.Object{{
		Name: name,
		Type: "sqlite:table",
		Properties: map[string]any{
			"file":       name + ".db",
			"table":      name,
			"key_column": spec.KeyColumn(),
			"columns":    columns,
		},
	}}

	for _, g := range grants {
		principal := s.namer.PhysicalName(g.Principal)
		objs = append(objs, engine.Object{
			Name: fmt.Sprintf("%s_%s_policy", name, principal),
			Type: "gateway:policy",
			Properties: map[string]any{
				"principal": principal,
				"table":     name,
				"role":      string(g.Role),
			},
		})
	}
	return objs, nil
}
