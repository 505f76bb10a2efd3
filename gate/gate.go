// Package gate is the authorization core of the clinic backend. A Gate is
// a registry of per-resource policies; profiles grant resource:action
// permissions with wildcard support, and a HybridGate combines both so a
// request needs the permission and, where a policy is registered, a
// positive resource check (e.g. task assignee). The package is generic
// over the subject type and knows nothing about the domain models.
package gate

import "context"

// Gate dispatches authorization checks to policies registered per
// resource type. U is the subject type and must be comparable so the
// zero value can mean "no user".
type Gate[U comparable] struct {
	policies map[string]Policy[U]
}

// NewGate creates an empty Gate ready to register policies.
func NewGate[U comparable]() *Gate[U] {
	return &Gate[U]{policies: make(map[string]Policy[U])}
}

// Register adds a policy for a resource type (e.g. "consultation"),
// replacing any existing one.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize returns ErrUnauthorized for a zero subject or a denied
// action, and ErrNoPolicyDefined when the resource type is unknown.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
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

// Can reports whether Authorize would succeed.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}
