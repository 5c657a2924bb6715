package auth

import (
	"sort"
	"strings"
	"time"
)

// RoleName identifies one of the fixed roles known to the service.
type RoleName string

const (
	RoleUser  RoleName = "ROLE_USER"
	RoleAdmin RoleName = "ROLE_ADMIN"
)

// KnownRoles lists every role the role table must contain.
func KnownRoles() []RoleName {
	return []RoleName{RoleUser, RoleAdmin}
}

// Role is a row of the role table.
type Role struct {
	ID   int64
	Name RoleName
}

// User represents a stored user account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	Roles        []Role
}

// RoleNames returns the distinct role names held by the user.
func (u *User) RoleNames() []RoleName {
	names := make([]RoleName, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Principal is the identity resolved for a single request. The zero value is
// not a valid principal; build one with NewPrincipal.
type Principal struct {
	ID       int64
	Username string
	Email    string
	roles    map[RoleName]struct{}
}

// NewPrincipal constructs a Principal. Duplicate roles collapse.
func NewPrincipal(id int64, username, email string, roles ...RoleName) Principal {
	set := make(map[RoleName]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return Principal{ID: id, Username: username, Email: email, roles: set}
}

// PrincipalFromUser builds the principal for a stored user with its current roles.
func PrincipalFromUser(u *User) Principal {
	return NewPrincipal(u.ID, u.Username, u.Email, u.RoleNames()...)
}

// HasRole reports whether the principal holds role.
func (p Principal) HasRole(role RoleName) bool {
	_, ok := p.roles[role]
	return ok
}

// Roles returns the principal's roles in a stable order.
func (p Principal) Roles() []RoleName {
	out := make([]RoleName, 0, len(p.roles))
	for r := range p.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RoleStrings returns Roles as plain strings for responses.
func (p Principal) RoleStrings() []string {
	roles := p.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// requestedRoles maps names accepted at signup to roles.
var requestedRoles = map[string]RoleName{
	"user":       RoleUser,
	"admin":      RoleAdmin,
	"role_user":  RoleUser,
	"role_admin": RoleAdmin,
}

// LookupRequestedRole maps a client supplied role name to a RoleName.
func LookupRequestedRole(name string) (RoleName, bool) {
	role, ok := requestedRoles[strings.ToLower(strings.TrimSpace(name))]
	return role, ok
}
