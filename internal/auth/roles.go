package auth

import "strings"

// Role is a caller role. Higher roles include the rights of lower ones:
// viewers read invoices, summaries and presets; operators also calculate
// projections and edit presets; admins also export consolidated reports.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

var roleRanks = map[Role]int{
	RoleViewer:   1,
	RoleOperator: 2,
	RoleAdmin:    3,
}

// NormalizeRole validates a role name, ignoring case and surrounding space.
func NormalizeRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := roleRanks[role]; !ok {
		return "", false
	}
	return role, true
}

// RoleAtLeast reports whether role satisfies required. Unknown roles satisfy nothing.
func RoleAtLeast(role Role, required Role) bool {
	rank, ok := roleRanks[role]
	return ok && rank >= roleRanks[required]
}
