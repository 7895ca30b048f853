package auth

import (
	"net/http"
	"strings"
)

// Rule grants access to requests matching a path (exact, or prefix when it
// ends with "*") and, optionally, a method.
type Rule struct {
	Method string
	Path   string
	Role   Role
}

func (r Rule) matches(method, path string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	if prefix, ok := strings.CutSuffix(r.Path, "*"); ok {
		return strings.HasPrefix(path, prefix)
	}
	return path == r.Path
}

// DefaultRules protects the billing and projection API. The first matching rule wins.
var DefaultRules = []Rule{
	{Path: "/api/v1/operations/*", Role: RoleViewer},
	{Path: "/api/v1/billing/summary", Role: RoleViewer},
	{Path: "/api/v1/billing/summary.*", Role: RoleAdmin},
	{Method: http.MethodPost, Path: "/api/v1/projections/calculate", Role: RoleOperator},
	{Method: http.MethodPut, Path: "/api/v1/projections/preset/rows", Role: RoleOperator},
	{Method: http.MethodGet, Path: "/api/v1/projections/*", Role: RoleViewer},
	{Method: http.MethodGet, Path: "/api/*", Role: RoleViewer},
	{Method: http.MethodHead, Path: "/api/*", Role: RoleViewer},
	{Path: "/api/*", Role: RoleOperator},
}

// Policy determines required roles by request.
type Policy struct {
	Rules          []Rule
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a policy over DefaultRules with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{Rules: DefaultRules, ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth and RBAC.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil || r.Method == http.MethodOptions {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredRole resolves the role a request needs; false means the route is unprotected.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	for _, rule := range p.Rules {
		if rule.matches(r.Method, r.URL.Path) {
			return rule.Role, true
		}
	}
	return "", false
}
