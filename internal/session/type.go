package session

import "strings"

// Known roles returned by the backend. The set is backend-defined; the
// client only normalizes, it does not enforce membership.
const (
	RoleGuest      = "guest"
	RoleStudent    = "student"
	RoleAdmin      = "admin"
	RoleCandidate  = "candidate"
	RoleRecruiter  = "recruiter"
	RoleMentor     = "mentor"
	RoleSuperAdmin = "superadmin"
)

// Identity is the resolved profile and role for the current credential.
// The zero value is not meaningful; use Anonymous for the logged-out state.
type Identity struct {
	ID      string
	Name    string
	Role    string
	Profile map[string]any
}

// Anonymous returns the identity used when no credential is active.
func Anonymous() Identity {
	return Identity{Role: RoleGuest}
}

// IsAnonymous reports whether the identity is the logged-out default.
func (i Identity) IsAnonymous() bool {
	return i.ID == "" && i.Role == RoleGuest
}

// NormalizeRole lower-cases and trims a backend role, defaulting to guest.
func NormalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return RoleGuest
	}
	return role
}
