package rbac

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/onlinestore/onlinestore/internal/auth"
)

// DefaultRules is the rule table the service is deployed with.
func DefaultRules() []Rule {
	return []Rule{
		{Method: http.MethodPost, Pattern: "/api/auth/login", Requirement: Public()},
		{Method: http.MethodPost, Pattern: "/api/auth/signup", Requirement: Public()},
		{Method: http.MethodGet, Pattern: "/healthz", Requirement: Public()},
		{Method: http.MethodGet, Pattern: "/metrics", Requirement: Public()},
		{Method: http.MethodGet, Pattern: "/data/show/orders", Requirement: Public()},
		{Method: http.MethodGet, Pattern: "/data/show/order/**", Requirement: Public()},
		{Method: http.MethodGet, Pattern: "/data/show/customers", Requirement: Public()},
		{Method: http.MethodGet, Pattern: "/data/show/customer/**", Requirement: Public()},
		{Pattern: "/api/admin/**", Requirement: RequireRole(auth.RoleAdmin)},
		{Pattern: "/api/**", Requirement: Authenticated()},
	}
}

// Policy is an ordered rule table. The first matching rule decides; requests
// matching no rule must be authenticated.
type Policy struct {
	rules    []compiledRule
	fallback Requirement
}

type compiledRule struct {
	rule     Rule
	segments []string
	subtree  bool
}

// NewPolicy validates and compiles rules.
func NewPolicy(rules []Rule) (*Policy, error) {
	p := &Policy{rules: make([]compiledRule, 0, len(rules)), fallback: Authenticated()}
	for i, rule := range rules {
		compiled, err := compileRule(rule)
		if err != nil {
			return nil, fmt.Errorf("rbac: rule %d (%s): %w", i, rule.Pattern, err)
		}
		p.rules = append(p.rules, compiled)
	}
	return p, nil
}

// MustPolicy is NewPolicy for static tables; it panics on an invalid rule.
func MustPolicy(rules []Rule) *Policy {
	p, err := NewPolicy(rules)
	if err != nil {
		panic(err)
	}
	return p
}

func compileRule(rule Rule) (compiledRule, error) {
	if rule.Pattern == "" {
		return compiledRule{}, errors.New("empty pattern")
	}
	if !strings.HasPrefix(rule.Pattern, "/") {
		return compiledRule{}, errors.New("pattern must start with /")
	}
	if rule.Requirement.Kind == KindRole && rule.Requirement.Role == "" {
		return compiledRule{}, errors.New("role requirement without role")
	}
	rule.Method = strings.ToUpper(strings.TrimSpace(rule.Method))

	segments := splitPath(rule.Pattern)
	subtree := false
	for i, seg := range segments {
		switch {
		case seg == "**":
			if i != len(segments)-1 {
				return compiledRule{}, errors.New("** is only allowed as the last segment")
			}
			subtree = true
		case strings.Contains(seg, "**"):
			return compiledRule{}, fmt.Errorf("invalid segment %q", seg)
		case strings.HasPrefix(seg, "{") != strings.HasSuffix(seg, "}"):
			return compiledRule{}, fmt.Errorf("unbalanced variable segment %q", seg)
		}
	}
	if subtree {
		segments = segments[:len(segments)-1]
	}
	return compiledRule{rule: rule, segments: segments, subtree: subtree}, nil
}

// Rules returns a copy of the rule table in evaluation order.
func (p *Policy) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	for i, r := range p.rules {
		out[i] = r.rule
	}
	return out
}

// Evaluate decides whether principal may call method on urlPath. principal is
// nil for anonymous requests.
func (p *Policy) Evaluate(method, urlPath string, principal *auth.Principal) Decision {
	segments := splitPath(cleanPath(urlPath))
	method = strings.ToUpper(method)

	for i := range p.rules {
		cr := &p.rules[i]
		if !cr.matches(method, segments) {
			continue
		}
		allowed, reason := cr.rule.Requirement.satisfiedBy(principal)
		return Decision{Allowed: allowed, Rule: &cr.rule, Reason: reason}
	}
	allowed, reason := p.fallback.satisfiedBy(principal)
	return Decision{Allowed: allowed, Reason: reason}
}

func (cr *compiledRule) matches(method string, segments []string) bool {
	if cr.rule.Method != "" && cr.rule.Method != method {
		return false
	}
	if cr.subtree {
		if len(segments) < len(cr.segments) {
			return false
		}
	} else if len(segments) != len(cr.segments) {
		return false
	}
	for i, want := range cr.segments {
		if !segmentMatches(want, segments[i]) {
			return false
		}
	}
	return true
}

func segmentMatches(pattern, segment string) bool {
	if pattern == "*" || (strings.HasPrefix(pattern, "{") && strings.HasSuffix(pattern, "}")) {
		return segment != ""
	}
	return pattern == segment
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
