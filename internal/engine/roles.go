package engine

import "tessera/internal/metadata"

// InferRole maps an accumulated operation set to the minimal role that
// covers it. Any mutating operation requires READWRITE; a set of pure reads
// requires READ. Pure function: it is re-evaluated on every Bind with the
// full union for the pair, so the result never depends on call order and
// never goes down as operations accumulate.
func InferRole(ops map[metadata.Operation]bool) metadata.Role {
	for op := range ops {
		if op.IsWrite() {
			return metadata.RoleReadWrite
		}
	}
	return metadata.RoleRead
}
