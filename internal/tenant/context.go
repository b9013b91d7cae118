package tenant

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// databaseKey scopes the active tenant database name to one request.
var databaseKey = contextKey{}

type clinicKey struct{}

// clinicIDKey carries the clinic id alongside the database name so
// directory writes can attribute tenant data to its clinic.
var clinicIDKey = clinicKey{}

// WithDatabase returns a context carrying the tenant database name.
// An empty name means "use the central database".
func WithDatabase(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, databaseKey, name)
}

// DatabaseFromContext returns the tenant database name set on the
// context, or empty when no tenant is active.
func DatabaseFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(databaseKey).(string); ok {
		return name
	}
	return ""
}

// ClearDatabase removes the tenant from the context by shadowing it
// with an empty name. Exit paths that hand the context to code
// outside the request's scope must call this so a stale tenant never
// leaks into unrelated work.
func ClearDatabase(ctx context.Context) context.Context {
	return context.WithValue(ctx, databaseKey, "")
}

// WithClinicID returns a context carrying the active clinic id.
func WithClinicID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, clinicIDKey, id)
}

// ClinicIDFromContext returns the clinic id set on the context, or
// uuid.Nil when no tenant is active.
func ClinicIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(clinicIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithTenantContext runs fn with the tenant database name set on the
// derived context. The tenant is scoped to the callback; the caller's
// context is never mutated.
func WithTenantContext(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return fn(WithDatabase(ctx, name))
}
