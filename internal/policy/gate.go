// Package policy provides the Gate/Policy authorization layer. The Gate is a
// central registry of policies; each Policy defines the rules for one resource
// type (product, order, ...). The deny-by-default middleware only checks the
// boundary (allow-list + bearer shape); fine-grained decisions happen here,
// route-annotated through the Gate.
package policy

import (
	"context"

	"github.com/primeo/api/internal/models"
)

// Gate is the central authorization checkpoint. Register policies by resource
// type name, then call Authorize or Can with the authenticated user.
type Gate struct {
	policies map[string]Policy
}

// NewGate creates an empty Gate ready to register policies.
func NewGate() *Gate {
	return &Gate{policies: make(map[string]Policy)}
}

// Register adds a policy for a given resource type (e.g., "product").
// Overwrites any existing policy for that type.
func (g *Gate) Register(resourceType string, p Policy) {
	g.policies[resourceType] = p
}

// Authorize checks authorization and returns an error if denied.
// Returns ErrUnauthorized for nil user or denied action; ErrNoPolicyDefined
// when resourceType has no registered policy (deny by default).
func (g *Gate) Authorize(ctx context.Context, user *models.User, action Action, resourceType string, resource any) error {
	if user == nil {
		return ErrUnauthorized
	}
	p, ok := g.policies[resourceType]
	if !ok {
		return ErrNoPolicyDefined
	}
	if !p.Can(ctx, user, action, resource) {
		return ErrUnauthorized
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate) Can(ctx context.Context, user *models.User, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}
