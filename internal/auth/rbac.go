package auth

// Roles, ordered by privilege.
const (
	RoleUser   = "user"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

var roleRank = map[string]int{
	RoleUser:   1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// ValidRole reports whether role is a known role name.
func ValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// RoleAtLeast reports whether role meets or exceeds the required role.
// Unknown roles never satisfy any requirement.
func RoleAtLeast(role, required string) bool {
	have, ok := roleRank[role]
	if !ok {
		return false
	}
	want, ok := roleRank[required]
	if !ok {
		return false
	}
	return have >= want
}
