package entity

// Role name constants carried in JWT claims.
// There is no role table; the role is derived from which account table
// (employees or doctors) the login matched.
const (
	RoleEmployee = "employee"
	RoleDoctor   = "doctor"
)
