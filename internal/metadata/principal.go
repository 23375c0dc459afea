package metadata

// PrincipalContext is the authenticated caller identity attached to gateway
// requests: which principal is calling, which table its token covers, and
// the role tier it was granted.
type PrincipalContext struct {
	ID    string
	Table string
	Role  Role
}

// Allows returns true if the principal's role covers the given operation.
func (p *PrincipalContext) Allows(op Operation) bool {
	if op.IsWrite() {
		return p.Role == RoleReadWrite
	}
	return p.Role.Includes(RoleRead)
}
