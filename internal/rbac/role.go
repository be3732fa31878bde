package rbac

import "strings"

// Role identifies one of the closed set of application roles.
type Role string

const (
	RoleOperatore Role = "operatore"
	RoleAdmin     Role = "admin"
	RoleSuperuser Role = "superuser"
)

// KnownRoles lists every valid role, least privileged first.
func KnownRoles() []Role {
	return []Role{RoleOperatore, RoleAdmin, RoleSuperuser}
}

// ParseRole normalizes a raw role value. The boolean reports whether the
// value names a known role; anything else yields no capabilities downstream.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleOperatore:
		return RoleOperatore, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleSuperuser:
		return RoleSuperuser, true
	default:
		return "", false
	}
}

// RoleSet is the canonical view of a user's role claim. The claim arrives in
// several historical shapes (absent, single string, list of strings); RoleSet
// collapses them into one value so capability checks never branch on shape.
type RoleSet struct {
	roles map[Role]struct{}
}

// NoRoles returns the empty role set. Every capability query on it is false.
func NoRoles() RoleSet {
	return RoleSet{}
}

// SingleRole builds a set containing exactly one role.
func SingleRole(r Role) RoleSet {
	return RolesOf(r)
}

// RolesOf builds a set from the given roles, dropping unknown values.
func RolesOf(roles ...Role) RoleSet {
	set := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		if parsed, ok := ParseRole(string(r)); ok {
			set[parsed] = struct{}{}
		}
	}
	if len(set) == 0 {
		return RoleSet{}
	}
	return RoleSet{roles: set}
}

// FromClaim normalizes a dynamically typed role claim. Supported shapes are
// nil, string, []string and []any of strings; unknown roles and any other
// shape resolve to membership-free sets rather than errors.
func FromClaim(claim any) RoleSet {
	switch v := claim.(type) {
	case nil:
		return NoRoles()
	case string:
		if r, ok := ParseRole(v); ok {
			return SingleRole(r)
		}
		return NoRoles()
	case []string:
		roles := make([]Role, 0, len(v))
		for _, s := range v {
			roles = append(roles, Role(s))
		}
		return RolesOf(roles...)
	case []any:
		roles := make([]Role, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				roles = append(roles, Role(s))
			}
		}
		return RolesOf(roles...)
	default:
		return NoRoles()
	}
}

// IsEmpty reports whether no role is assigned.
func (s RoleSet) IsEmpty() bool {
	return len(s.roles) == 0
}

// Contains reports membership of a specific role.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s.roles[r]
	return ok
}

// Roles returns the member roles, least privileged first.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(s.roles))
	for _, r := range KnownRoles() {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

// Strings returns the member role names, least privileged first.
func (s RoleSet) Strings() []string {
	roles := s.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// IsAdmin reports whether any assigned role is admin or superuser.
func (s RoleSet) IsAdmin() bool {
	return s.Contains(RoleAdmin) || s.Contains(RoleSuperuser)
}

// IsSuperuser reports whether superuser is assigned.
func (s RoleSet) IsSuperuser() bool {
	return s.Contains(RoleSuperuser)
}

// IsOperatore reports whether the set contains operatore without any
// elevated role.
func (s RoleSet) IsOperatore() bool {
	return s.Contains(RoleOperatore) && !s.IsAdmin()
}
