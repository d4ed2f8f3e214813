package policy

import (
	"context"
	"errors"
	"strings"

	"github.com/primeo/api/internal/models"
)

// Sentinel errors returned by Gate.Authorize.
var (
	ErrUnauthorized    = errors.New("accès refusé")
	ErrNoPolicyDefined = errors.New("aucune policy définie pour cette ressource")
)

// Policy defines authorization rules for a resource type. For list/create,
// resource may be nil (context-only check).
type Policy interface {
	Can(ctx context.Context, user *models.User, action Action, resource any) bool
}

// Permission represents an allowed action on a resource type.
// Format: "resource:action" (e.g., "product:create", "order:view").
type Permission string

// NewPermission creates a permission from resource type and action.
func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// Parse splits a permission into resource type and action.
func (p Permission) Parse() (resourceType string, action Action) {
	parts := strings.SplitN(string(p), ":", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], Action(parts[1])
}

// Wildcards for super permissions
const (
	WildcardAll                     = "*"
	PermissionSuperAdmin Permission = "*:*"
)

// Matches checks if this permission matches a requested permission.
// Supports wildcards: "*:*" matches all, "product:*" matches all product actions.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionSuperAdmin {
		return true
	}
	if p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, _ := requested.Parse()
	if res == reqRes && string(act) == WildcardAll {
		return true
	}
	return false
}

// PermissionPolicy authorizes through the role profile table: the action is
// allowed when the user's role profile holds the matching permission.
type PermissionPolicy struct {
	resourceType string
}

// NewPermissionPolicy builds the standard profile-backed policy for a resource.
func NewPermissionPolicy(resourceType string) *PermissionPolicy {
	return &PermissionPolicy{resourceType: resourceType}
}

func (p *PermissionPolicy) Can(_ context.Context, user *models.User, action Action, _ any) bool {
	profile := ProfileForRole(user.Role)
	if profile == nil {
		return false
	}
	return profile.HasPermission(NewPermission(p.resourceType, action))
}
