package domain

// Identity is the resolved caller for a single call or streaming
// connection. It is derived from a verified token, never persisted,
// and passed explicitly to every operation.
type Identity struct {
	Subject string
	Role    Role
}

// GuestIdentity is the fallback when no valid token is presented.
func GuestIdentity() Identity {
	return Identity{Role: RoleGuest}
}
