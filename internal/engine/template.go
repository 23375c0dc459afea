package engine

import "tessera/internal/metadata"

// Object is one named infrastructure object in a target template: a table,
// a service, a role or an access policy. Properties are plain JSON-ready
// values; nothing here talks to a control plane.
type Object struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// Template is the tree of objects one synthesis run emits for a target.
// Objects keep emission order, which the session keeps deterministic by
// walking the graph in identity order.
type Template struct {
	Target  string   `json:"target"`
	Objects []Object `json:"resources"`
}

func NewTemplate(target string) *Template {
	return &Template{Target: target}
}

// Add appends an object to the template.
func (t *Template) Add(obj Object) {
	t.Objects = append(t.Objects, obj)
}

// Get returns the first object with the given name, or nil.
func (t *Template) Get(name string) *Object {
	for i := range t.Objects {
		if t.Objects[i].Name == name {
			return &t.Objects[i]
		}
	}
	return nil
}

// ByType returns all objects of the given type, in emission order.
func (t *Template) ByType(typ string) []Object {
	var out []Object
	for _, obj := range t.Objects {
		if obj.Type == typ {
			out = append(out, obj)
		}
	}
	return out
}

// Synthesizer turns one resource node plus its granted permissions into
// provider-specific template objects. One implementation exists per target;
// the target is selected at configuration time, never by inspecting types
// at run time.
type Synthesizer interface {
	// Target returns the provider name this synthesizer emits for.
	Target() string

	// Synthesize emits the template objects for a node: the resource itself
	// plus one access-policy object per grant. Errors abort the whole run.
	Synthesize(node *metadata.Node, grants []metadata.Grant) ([]Object, error)
}
