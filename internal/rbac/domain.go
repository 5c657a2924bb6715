package rbac

import (
	"fmt"

	"github.com/onlinestore/onlinestore/internal/auth"
)

// Kind classifies what a rule demands of the caller.
type Kind int

const (
	// KindAuthenticated requires any resolved principal.
	KindAuthenticated Kind = iota
	// KindPublic admits everyone, including anonymous callers.
	KindPublic
	// KindRole requires a principal holding Requirement.Role.
	KindRole
)

func (k Kind) String() string {
	switch k {
	case KindPublic:
		return "public"
	case KindAuthenticated:
		return "authenticated"
	case KindRole:
		return "role"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Requirement is the access level a rule grants.
type Requirement struct {
	Kind Kind
	Role auth.RoleName
}

// Public admits every caller.
func Public() Requirement { return Requirement{Kind: KindPublic} }

// Authenticated admits any resolved principal.
func Authenticated() Requirement { return Requirement{Kind: KindAuthenticated} }

// RequireRole admits principals holding role.
func RequireRole(role auth.RoleName) Requirement {
	return Requirement{Kind: KindRole, Role: role}
}

func (r Requirement) String() string {
	if r.Kind == KindRole {
		return "role(" + string(r.Role) + ")"
	}
	return r.Kind.String()
}

// satisfiedBy reports whether p meets the requirement. p is nil for anonymous callers.
func (r Requirement) satisfiedBy(p *auth.Principal) (bool, string) {
	switch r.Kind {
	case KindPublic:
		return true, ""
	case KindAuthenticated:
		if p == nil {
			return false, "authentication required"
		}
		return true, ""
	case KindRole:
		if p == nil {
			return false, "authentication required"
		}
		if !p.HasRole(r.Role) {
			return false, "missing role " + string(r.Role)
		}
		return true, ""
	default:
		return false, "unknown requirement"
	}
}

// Rule binds a method and path pattern to a requirement. An empty Method
// matches every method.
type Rule struct {
	Method      string
	Pattern     string
	Requirement Requirement
}

func (r Rule) String() string {
	method := r.Method
	if method == "" {
		method = "*"
	}
	return method + " " + r.Pattern + " " + r.Requirement.String()
}

// Decision is the outcome of evaluating a request against the policy. Rule is
// nil when no rule matched and the default requirement applied.
type Decision struct {
	Allowed bool
	Rule    *Rule
	Reason  string
}
