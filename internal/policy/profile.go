package policy

import "github.com/primeo/api/internal/models"

// Profile is a role with its set of permissions.
type Profile struct {
	role        models.Role
	permissions map[Permission]bool
}

// NewProfile creates a profile with the given permissions.
func NewProfile(role models.Role, permissions ...Permission) *Profile {
	p := &Profile{role: role, permissions: make(map[Permission]bool, len(permissions))}
	for _, perm := range permissions {
		p.permissions[perm] = true
	}
	return p
}

func (p *Profile) Role() models.Role { return p.role }

// Permissions returns all permissions in this profile.
func (p *Profile) Permissions() []Permission {
	perms := make([]Permission, 0, len(p.permissions))
	for perm := range p.permissions {
		perms = append(perms, perm)
	}
	return perms
}

// HasPermission checks if the profile holds the requested permission.
// Supports wildcard matching.
func (p *Profile) HasPermission(requested Permission) bool {
	for perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}
