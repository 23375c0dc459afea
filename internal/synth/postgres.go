package synth

import (
	"fmt"
	"strings"

	"tessera/internal/engine"
	"tessera/internal/metadata"
)

// Postgres synthesizes templates for the postgres target: tables become
// Postgres tables with seed rows, principals become database roles, and
// grants become SQL privilege grants.
type Postgres struct {
	namer Namer
}

// Postgres identifiers are truncated at 63 bytes.
func NewPostgres() *Postgres {
	return &Postgres{namer: NewNamer(NameRules{MaxLength: 63})}
}

func (p *Postgres) Target() string { return "postgres" }

func (p *Postgres) Synthesize(node *metadata.Node, grants []metadata.Grant) ([]engine.Object, error) {
	switch node.Kind {
	case metadata.KindTable:
		return p.table(node, producerGrants(node, grants))
	case metadata.KindFunction:
		return []engine.Object{functionObject(p.namer, node, principalGrants(node, grants))}, nil
	default:
		return nil, engine.UnknownKindError(string(node.Kind), node.ID.String())
	}
}

func (p *Postgres) table(node *metadata.Node, grants []metadata.Grant) ([]engine.Object, error) {
	spec := node.Table
	name := p.namer.PhysicalName(node.ID)
	node.BindPhysicalName(name)

	for _, row := range spec.InitialRows {
		if err := spec.ValidateRow(name, row); err != nil {
			return nil, engine.SchemaValidationError(node.ID.String(), err)
		}
	}

	columns := []map[string]any{
		{"name": spec.KeyColumn(), "type": "string", "primary_key": true},
	}
	for _, c := range spec.Columns {
		columns = append(columns, map[string]any{"name": c.Name, "type": c.Type})
	}

	props := map[string]any{
		"table":      name,
		"key_column": spec.KeyColumn(),
		"columns":    columns,
	}
	if len(spec.InitialRows) > 0 {
		props["seed_rows"] = spec.InitialRows
	}
	objs := []engine.Object{{Name: name, Type: "postgres:table", Properties: props}}

	// One role per distinct principal, then one grant object per ledger grant.
	seenRole := make(map[string]bool)
	for _, g := range grants {
		principal := p.namer.PhysicalName(g.Principal)
		if !seenRole[principal] {
			seenRole[principal] = true
			objs = append(objs, engine.Object{
				Name:       principal,
				Type:       "postgres:role",
				Properties: map[string]any{"role": principal},
			})
		}
		objs = append(objs, engine.Object{
			Name: fmt.Sprintf("%s_%s_%s", name, principal, strings.ToLower(string(g.Role))),
			Type: "postgres:grant",
			Properties: map[string]any{
				"role":       principal,
				"table":      name,
				"privileges": privilegesFor(g.Role),
			},
		})
	}
	return objs, nil
}

func privilegesFor(role metadata.Role) []string {
	if role == metadata.RoleReadWrite {
		return []string{"SELECT", "INSERT", "UPDATE", "DELETE"}
	}
	return []string{"SELECT"}
}
