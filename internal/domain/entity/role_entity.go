package entity

// Role decides what a user may do in the catalog.
// Agents list properties, buyers browse and send inquiries.
type Role string

const (
	RoleAgent Role = "AGENT"
	RoleBuyer Role = "BUYER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAgent || r == RoleBuyer
}

// ParseRole maps an input string onto a Role, defaulting to buyer when empty.
func ParseRole(s string) (Role, bool) {
	if s == "" {
		return RoleBuyer, true
	}
	r := Role(s)
	return r, r.Valid()
}
