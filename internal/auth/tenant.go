package auth

import "context"

// ResolveTenant returns the tenant of the authenticated caller, or fallback
// when the request carries no identity.
func ResolveTenant(ctx context.Context, fallback string) string {
	if tenantID := TenantIDFromContext(ctx); tenantID != "" {
		return tenantID
	}
	return fallback
}
