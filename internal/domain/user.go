package domain

// Role enumerates the caller roles known to the service. Authorization
// is an exact match against a single required role; there is no
// hierarchy between roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleGuest   Role = "guest"
)

// ParseRole maps a raw role string onto the enumerated type.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleGuest:
		return Role(s), true
	}
	return "", false
}

// User is a credential record. Password holds either a bcrypt hash or a
// plaintext credential; records are provisioned out of band and are
// read-only at runtime.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}
