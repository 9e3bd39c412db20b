package auth

import "errors"

// Role represents an authorisation tier in the system.
type Role string

const (
	// RoleViewer can read device power state and transition history.
	RoleViewer Role = "viewer"

	// RoleOperator can request resume/suspend on individual devices
	// in addition to everything viewer can do.
	RoleOperator Role = "operator"

	// RoleAdmin can additionally trigger system-wide suspend/resume.
	RoleAdmin Role = "admin"
)

// ValidRoles is the set of roles a token may carry.
var ValidRoles = []Role{RoleViewer, RoleOperator, RoleAdmin}

// IsValidRole returns true if the role is one of the defined tiers.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// CanOperate returns true if the role may change device power state.
func (r Role) CanOperate() bool {
	return r == RoleOperator || r == RoleAdmin
}

// CanAdminister returns true if the role may run bulk operations.
func (r Role) CanAdminister() bool {
	return r == RoleAdmin
}

// Sentinel errors for auth operations.
var (
	ErrTokenExpired = errors.New("auth: token has expired")
	ErrTokenInvalid = errors.New("auth: invalid token")
	ErrForbidden    = errors.New("auth: insufficient permissions")
)
