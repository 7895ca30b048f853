package auth

import "context"

type identityKey struct{}

// Identity is the authenticated caller of a request.
type Identity struct {
	TenantID string
	Role     Role
	Subject  string
}

// WithIdentity stores the caller identity in context.
func WithIdentity(ctx context.Context, tenantID string, role Role, subject string) context.Context {
	return context.WithValue(ctx, identityKey{}, Identity{TenantID: tenantID, Role: role, Subject: subject})
}

// IdentityFromContext returns the caller identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// TenantIDFromContext extracts tenant id from context.
func TenantIDFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.TenantID
}

// RoleFromContext extracts role from context.
func RoleFromContext(ctx context.Context) Role {
	id, _ := IdentityFromContext(ctx)
	return id.Role
}

// SubjectFromContext extracts subject from context.
func SubjectFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.Subject
}
