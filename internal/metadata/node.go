package metadata

// FunctionSpec is the logical configuration of a compute function node.
// Functions are the execution principals that bind to tables.
type FunctionSpec struct {
	Handler string            `json:"handler"`
	Env     map[string]string `json:"env,omitempty"`
}

// Node is a typed unit in the resource graph: identity, kind, and the
// kind-specific configuration. The physical name is bound once during
// synthesis and immutable afterwards.
type Node struct {
	Kind     Kind          `json:"kind"`
	ID       Identity      `json:"id"`
	Table    *TableSpec    `json:"table,omitempty"`
	Function *FunctionSpec `json:"function,omitempty"`

	physicalName string
}

// PhysicalName returns the backend-legal name assigned during synthesis,
// or empty if the node has not been synthesized yet.
func (n *Node) PhysicalName() string { return n.physicalName }

// BindPhysicalName records the physical name the first time it is derived.
// Later calls are no-ops so the binding stays immutable across a run.
func (n *Node) BindPhysicalName(name string) {
	if n.physicalName == "" {
		n.physicalName = name
	}
}
