package domain

import "errors"

// Sentinel errors for the authentication core. Login handlers may map
// ErrCredentialNotFound and ErrBadPassword to distinct statuses; every
// authenticated-route failure collapses to ErrUnauthenticated.
var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrBadPassword        = errors.New("bad password")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrUnknownScope       = errors.New("unknown auth scope")
	ErrLoginThrottled     = errors.New("too many login attempts")
)
