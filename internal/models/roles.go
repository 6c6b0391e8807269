// internal/models/roles.go

package models

// Role is the platform-wide role carried by every user document.
type Role string

const (
	RoleUser         Role = "user"
	RoleAdmin        Role = "admin"
	RoleGroupManager Role = "gestionnaire_groupe"
	RoleEventManager Role = "gestionnaire_events"
)

// IsValid reports whether the role is one of the known role values.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleGroupManager, RoleEventManager:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// AllRoles returns every role value the platform recognizes.
func AllRoles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleGroupManager, RoleEventManager}
}

// RoleFromString converts a raw string into a Role. Empty input falls back to
// RoleUser so documents written before the role field existed keep working.
func RoleFromString(role string) (Role, bool) {
	if role == "" {
		return RoleUser, true
	}
	r := Role(role)
	if r.IsValid() {
		return r, true
	}
	return "", false
}
