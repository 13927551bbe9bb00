package domain

// PrincipalRecord is the normalized view over the three credential tables.
// The password hash never travels past the password verifier boundary;
// Profile carries only fields safe to return to clients.
type PrincipalRecord struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	Active       bool
	Profile      any
}

// Identity is the result of resolving a session token against live storage.
type Identity struct {
	Role    Role
	Profile any
}
