package metadata

// Role is the minimal privilege tier inferred from an operation set.
type Role string

const (
	RoleRead      Role = "READ"
	RoleReadWrite Role = "READWRITE"
)

// Includes returns true if holding this role satisfies the required role.
func (r Role) Includes(required Role) bool {
	if r == RoleReadWrite {
		return true
	}
	return required == RoleRead
}

// Grant authorizes a principal to act on a producer resource at a role
// tier. Created during synthesis, immutable afterwards.
type Grant struct {
	Producer  Identity `json:"producer"`
	Principal Identity `json:"principal"`
	Role      Role     `json:"role"`
}
