// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets values, services read them. Keeping this package free of
// net/http lets services import only what they need.
//
// Usage in services (read values):
//
//	caller := requestcontext.Caller(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithCaller(ctx, jurorID)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "verdict/pkg/domain"
)

type (
	callerKey      struct{}
	ownerKey       struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Caller retrieves the authenticated caller principal from the context.
// Returns the zero value if not set.
func Caller(ctx context.Context) id.JurorID {
	if caller, ok := ctx.Value(callerKey{}).(id.JurorID); ok {
		return caller
	}
	return id.JurorID{}
}

// WithCaller injects the authenticated caller principal into the context.
func WithCaller(ctx context.Context, caller id.JurorID) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// IsOwner reports whether the caller authenticated with the process-owner
// role. The transport layer establishes this from token claims; the core
// trusts the identity as given.
func IsOwner(ctx context.Context) bool {
	owner, ok := ctx.Value(ownerKey{}).(bool)
	return ok && owner
}

// WithOwner marks the context as carrying the process-owner role.
func WithOwner(ctx context.Context, owner bool) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// RequestID retrieves the request correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context. Falls back to
// time.Now() for non-HTTP contexts (workers, tests, CLI).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests and for workers that need consistent time within a batch.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
