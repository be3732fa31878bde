package rbac

// Capability names an atomic boolean permission.
type Capability string

const (
	CanViewUsers   Capability = "canViewUsers"
	CanEditUsers   Capability = "canEditUsers"
	CanDeleteUsers Capability = "canDeleteUsers"

	CanViewClienti   Capability = "canViewClienti"
	CanEditClienti   Capability = "canEditClienti"
	CanDeleteClienti Capability = "canDeleteClienti"

	CanViewSettings Capability = "canViewSettings"
	CanEditSettings Capability = "canEditSettings"

	CanViewAuditLogs Capability = "canViewAuditLogs"

	// CanManageSuperusers exists only for superuser and is deliberately
	// excluded from the operatore/admin grants.
	CanManageSuperusers Capability = "canManageSuperusers"
)

// Capabilities lists every capability known to the matrix.
func Capabilities() []Capability {
	return []Capability{
		CanViewUsers,
		CanEditUsers,
		CanDeleteUsers,
		CanViewClienti,
		CanEditClienti,
		CanDeleteClienti,
		CanViewSettings,
		CanEditSettings,
		CanViewAuditLogs,
		CanManageSuperusers,
	}
}

// matrix is the static permission table. Grants grow monotonically from
// operatore to superuser; capabilities absent from a row are denied.
var matrix = map[Role]map[Capability]bool{
	RoleOperatore: {
		CanViewClienti: true,
		CanEditClienti: true,
	},
	RoleAdmin: {
		CanViewClienti:   true,
		CanEditClienti:   true,
		CanDeleteClienti: true,
		CanViewUsers:     true,
		CanEditUsers:     true,
		CanViewSettings:  true,
		CanViewAuditLogs: true,
	},
	RoleSuperuser: {
		CanViewClienti:      true,
		CanEditClienti:      true,
		CanDeleteClienti:    true,
		CanViewUsers:        true,
		CanEditUsers:        true,
		CanDeleteUsers:      true,
		CanViewSettings:     true,
		CanEditSettings:     true,
		CanViewAuditLogs:    true,
		CanManageSuperusers: true,
	},
}

// RoleGrants returns a copy of the capability row for a role. Unknown roles
// yield an empty row.
func RoleGrants(r Role) map[Capability]bool {
	row, ok := matrix[r]
	if !ok {
		return map[Capability]bool{}
	}
	out := make(map[Capability]bool, len(row))
	for c, granted := range row {
		out[c] = granted
	}
	return out
}

// HasPermission reports whether any role in the set grants the capability.
// The empty set, unknown roles and unknown capabilities all deny.
func HasPermission(set RoleSet, c Capability) bool {
	for r := range set.roles {
		if matrix[r][c] {
			return true
		}
	}
	return false
}
