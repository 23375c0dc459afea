// Package synth holds the per-target backend synthesizers. Each synthesizer
// turns a resource node plus its permission grants into declarative template
// objects; nothing here performs network calls.
package synth

import (
	"strings"

	"tessera/internal/engine"
	"tessera/internal/metadata"
)

// EnvTablePrefix is the prefix of the environment variables a synthesizer
// injects into a function for every table it is bound to. The runtime table
// client reads these back as opaque configuration strings.
const EnvTablePrefix = "TESSERA_TABLE_"

// producerGrants filters grants down to those where the node is the
// producer (its own access policies).
func producerGrants(node *metadata.Node, grants []metadata.Grant) []metadata.Grant {
	var out []metadata.Grant
	for _, g := range grants {
		if g.Producer == node.ID {
			out = append(out, g)
		}
	}
	return out
}

// principalGrants filters grants down to those where the node is the
// principal (the permissions its runtime acts under).
func principalGrants(node *metadata.Node, grants []metadata.Grant) []metadata.Grant {
	var out []metadata.Grant
	for _, g := range grants {
		if g.Principal == node.ID {
			out = append(out, g)
		}
	}
	return out
}

// functionObject emits the process:service object both targets share: the
// function's handler and env, plus one TESSERA_TABLE_* entry per grant so
// the deployed code can locate its tables and the role each token carries.
func functionObject(namer Namer, node *metadata.Node, grants []metadata.Grant) engine.Object {
	name := namer.PhysicalName(node.ID)
	node.BindPhysicalName(name)

	env := make(map[string]string, len(node.Function.Env)+2*len(grants))
	for k, v := range node.Function.Env {
		env[k] = v
	}
	for _, g := range grants {
		key := EnvTablePrefix + envKey(g.Producer.Base())
		env[key] = namer.PhysicalName(g.Producer)
		env[key+"_ROLE"] = string(g.Role)
	}

	return engine.Object{
		Name: name,
		Type: "process:service",
		Properties: map[string]any{
			"service": name,
			"handler": node.Function.Handler,
			"env":     env,
		},
	}
}

// envKey uppercases an identity segment into an env-var-safe suffix.
func envKey(s string) string {
	return strings.ToUpper(sanitize(s, "_"))
}
