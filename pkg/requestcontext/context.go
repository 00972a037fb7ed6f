// Package requestcontext carries per-request metadata through context so
// handlers, services, and stores stay free of transport concerns.
package requestcontext

import "context"

type requestIDKey struct{}
type actorKey struct{}
type rolesKey struct{}

// WithRequestID returns a context carrying the request correlation ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request correlation ID, or "" when absent.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithActor returns a context carrying the authenticated caller identity.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// Actor returns the authenticated caller identity, or "" when the request is
// anonymous.
func Actor(ctx context.Context) string {
	v, _ := ctx.Value(actorKey{}).(string)
	return v
}

// WithRoles returns a context carrying the caller's granted roles.
func WithRoles(ctx context.Context, roles []string) context.Context {
	return context.WithValue(ctx, rolesKey{}, roles)
}

// Roles returns the caller's granted roles, or nil.
func Roles(ctx context.Context) []string {
	v, _ := ctx.Value(rolesKey{}).([]string)
	return v
}
