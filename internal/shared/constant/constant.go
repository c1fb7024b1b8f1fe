package constant

// Roles recognized by the authorization policy.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
