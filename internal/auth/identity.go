package auth

import "github.com/Maharab2134/deshishop/internal/domain/user"

// Identity is the authenticated caller resolved from a request token. The
// domain services trust it without re-verifying.
type Identity struct {
	UserID string
	Role   user.Role
}

// IsAdmin reports whether the identity carries the admin capability.
func (id Identity) IsAdmin() bool {
	return id.Role == user.RoleAdmin
}
