package rbac

import "strings"

// routeRule binds a path prefix to the capability required to enter it.
type routeRule struct {
	prefix     string
	capability Capability
}

// protectedRoutes is the deny-by-exception table. Paths that match no entry
// are accessible to any authenticated user.
var protectedRoutes = []routeRule{
	{prefix: "/users", capability: CanViewUsers},
	{prefix: "/configurazioni", capability: CanViewSettings},
	{prefix: "/settings", capability: CanViewSettings},
	{prefix: "/audit-logs", capability: CanViewAuditLogs},
}

// RequiredCapability returns the capability guarding a path, if any.
// Matching is exact or segment-prefix, so /users and /users/42/edit both
// match the /users entry while /users-export does not.
func RequiredCapability(path string) (Capability, bool) {
	for _, rule := range protectedRoutes {
		if path == rule.prefix || strings.HasPrefix(path, rule.prefix+"/") {
			return rule.capability, true
		}
	}
	return "", false
}

// CanAccessRoute reports whether the role set may enter the given path.
// Unprotected paths are always permitted.
func CanAccessRoute(set RoleSet, path string) bool {
	capability, protected := RequiredCapability(path)
	if !protected {
		return true
	}
	return HasPermission(set, capability)
}
