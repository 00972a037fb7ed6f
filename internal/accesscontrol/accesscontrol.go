// Package accesscontrol is the role-based access-control collaborator. The
// relay core consumes exactly one operation from it: HasRole. Role grants are
// carried in JWT claims and surfaced through the request context by the
// middleware in this package.
package accesscontrol

import (
	"context"

	"relaygate/pkg/requestcontext"
)

// Role names a capability grant.
type Role string

// RoleAdmin gates allowlist mutation, router rotation, and failed-message
// recovery.
const RoleAdmin Role = "relay-admin"

// Checker answers role membership questions for a subject.
type Checker interface {
	HasRole(ctx context.Context, role Role, subject string) bool
}

// ContextChecker reads role grants injected into the request context by the
// JWT middleware. The subject must match the authenticated actor.
type ContextChecker struct{}

func (ContextChecker) HasRole(ctx context.Context, role Role, subject string) bool {
	if subject == "" || subject != requestcontext.Actor(ctx) {
		return false
	}
	for _, granted := range requestcontext.Roles(ctx) {
		if Role(granted) == role {
			return true
		}
	}
	return false
}

// StaticChecker holds a fixed subject-to-roles grant table. Used for
// provisioning-time wiring and tests.
type StaticChecker struct {
	grants map[string][]Role
}

// NewStatic constructs a StaticChecker from a grant table.
func NewStatic(grants map[string][]Role) *StaticChecker {
	copied := make(map[string][]Role, len(grants))
	for subject, roles := range grants {
		copied[subject] = append([]Role(nil), roles...)
	}
	return &StaticChecker{grants: copied}
}

func (c *StaticChecker) HasRole(_ context.Context, role Role, subject string) bool {
	for _, granted := range c.grants[subject] {
		if granted == role {
			return true
		}
	}
	return false
}
