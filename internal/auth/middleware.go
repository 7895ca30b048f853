package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Middleware validates bearer tokens and enforces the role policy.
type Middleware struct {
	secret []byte
	policy Policy
	log    zerolog.Logger
}

// NewMiddleware constructs an auth middleware.
func NewMiddleware(secret []byte, policy Policy, log zerolog.Logger) *Middleware {
	return &Middleware{secret: secret, policy: policy, log: log.With().Str("component", "auth").Logger()}
}

// Wrap applies authentication and RBAC to next. Authenticated requests carry
// the caller identity in their context.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		required, ok := m.policy.RequiredRole(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := ParseJWT(bearerToken(r), m.secret)
		if err != nil {
			m.log.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected token")
			deny(w, http.StatusUnauthorized, err)
			return
		}
		role, _ := NormalizeRole(claims.Role)
		if !RoleAtLeast(role, required) {
			m.log.Info().
				Str("subject", claims.Subject).
				Str("role", string(role)).
				Str("required", string(required)).
				Str("path", r.URL.Path).
				Msg("forbidden")
			deny(w, http.StatusForbidden, ErrForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.TenantID, role, claims.Subject)))
	})
}

func deny(w http.ResponseWriter, status int, err error) {
	msg := ErrInvalidToken.Error()
	switch {
	case errors.Is(err, ErrUnauthorized):
		msg = ErrUnauthorized.Error()
	case errors.Is(err, ErrForbidden):
		msg = ErrForbidden.Error()
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
