package rbac

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlinestore/onlinestore/internal/auth"
)

func principal(roles ...auth.RoleName) *auth.Principal {
	p := auth.NewPrincipal(1, "alice", "a@x.io", roles...)
	return &p
}

func TestDefaultPolicyDecisions(t *testing.T) {
	policy := MustPolicy(DefaultRules())
	user := principal(auth.RoleUser)
	admin := principal(auth.RoleUser, auth.RoleAdmin)

	tests := []struct {
		name      string
		method    string
		path      string
		principal *auth.Principal
		allowed   bool
	}{
		{name: "login anonymous", method: http.MethodPost, path: "/api/auth/login", allowed: true},
		{name: "signup anonymous", method: http.MethodPost, path: "/api/auth/signup", allowed: true},
		{name: "logout anonymous", method: http.MethodPost, path: "/api/auth/logout", allowed: false},
		{name: "logout user", method: http.MethodPost, path: "/api/auth/logout", principal: user, allowed: true},
		{name: "login via GET falls to api rule", method: http.MethodGet, path: "/api/auth/login", allowed: false},
		{name: "orders public", method: http.MethodGet, path: "/data/show/orders", allowed: true},
		{name: "order detail public", method: http.MethodGet, path: "/data/show/order/42", allowed: true},
		{name: "order subtree public", method: http.MethodGet, path: "/data/show/order/42/lines", allowed: true},
		{name: "customers public", method: http.MethodGet, path: "/data/show/customers", allowed: true},
		{name: "customer detail public", method: http.MethodGet, path: "/data/show/customer/7", allowed: true},
		{name: "orders write not public", method: http.MethodPost, path: "/data/show/orders", allowed: false},
		{name: "me anonymous", method: http.MethodGet, path: "/api/me", allowed: false},
		{name: "me user", method: http.MethodGet, path: "/api/me", principal: user, allowed: true},
		{name: "admin anonymous", method: http.MethodGet, path: "/api/admin/users", allowed: false},
		{name: "admin as user", method: http.MethodGet, path: "/api/admin/users", principal: user, allowed: false},
		{name: "admin as admin", method: http.MethodGet, path: "/api/admin/users", principal: admin, allowed: true},
		{name: "admin root as user", method: http.MethodGet, path: "/api/admin", principal: user, allowed: false},
		{name: "unlisted anonymous", method: http.MethodGet, path: "/internal/debug", allowed: false},
		{name: "unlisted user", method: http.MethodGet, path: "/internal/debug", principal: user, allowed: true},
		{name: "root anonymous", method: http.MethodGet, path: "/", allowed: false},
		{name: "health", method: http.MethodGet, path: "/healthz", allowed: true},
		{name: "metrics", method: http.MethodGet, path: "/metrics", allowed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := policy.Evaluate(tt.method, tt.path, tt.principal)
			assert.Equal(t, tt.allowed, d.Allowed, d.Reason)
			if !tt.allowed {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestPolicyFirstMatchWins(t *testing.T) {
	policy := MustPolicy([]Rule{
		{Pattern: "/api/public/**", Requirement: Public()},
		{Pattern: "/api/**", Requirement: RequireRole(auth.RoleAdmin)},
		{Pattern: "/api/public/secret", Requirement: RequireRole(auth.RoleAdmin)},
	})

	d := policy.Evaluate(http.MethodGet, "/api/public/secret", nil)
	require.True(t, d.Allowed)
	require.NotNil(t, d.Rule)
	assert.Equal(t, "/api/public/**", d.Rule.Pattern)

	d = policy.Evaluate(http.MethodGet, "/api/other", principal(auth.RoleUser))
	assert.False(t, d.Allowed)
	assert.Equal(t, "missing role ROLE_ADMIN", d.Reason)
}

func TestPolicyDefaultDeniesAnonymous(t *testing.T) {
	policy := MustPolicy(nil)

	d := policy.Evaluate(http.MethodGet, "/anything", nil)
	assert.False(t, d.Allowed)
	assert.Nil(t, d.Rule)

	d = policy.Evaluate(http.MethodGet, "/anything", principal())
	assert.True(t, d.Allowed)
}

func TestPolicyCleansPathBeforeMatching(t *testing.T) {
	policy := MustPolicy(DefaultRules())
	user := principal(auth.RoleUser)

	paths := []string{
		"/data/show/orders/../../../api/admin/users",
		"/api/./admin/users",
		"//api//admin/users",
		"/api/admin/users/",
	}
	for _, p := range paths {
		d := policy.Evaluate(http.MethodGet, p, user)
		assert.False(t, d.Allowed, p)
	}
	assert.True(t, policy.Evaluate(http.MethodGet, "/data/show/./orders", nil).Allowed)
}

func TestPatternSegments(t *testing.T) {
	policy := MustPolicy([]Rule{
		{Method: "get", Pattern: "/shops/{id}/items/*", Requirement: Public()},
	})

	assert.True(t, policy.Evaluate(http.MethodGet, "/shops/1/items/9", nil).Allowed)
	assert.False(t, policy.Evaluate(http.MethodGet, "/shops/1/items", nil).Allowed)
	assert.False(t, policy.Evaluate(http.MethodGet, "/shops/1/items/9/x", nil).Allowed)
	assert.False(t, policy.Evaluate(http.MethodPut, "/shops/1/items/9", nil).Allowed)
}

func TestNewPolicyRejectsInvalidRules(t *testing.T) {
	tests := []Rule{
		{Pattern: "", Requirement: Public()},
		{Pattern: "api/x", Requirement: Public()},
		{Pattern: "/api/**/x", Requirement: Public()},
		{Pattern: "/api/a**", Requirement: Public()},
		{Pattern: "/api/{id", Requirement: Public()},
		{Pattern: "/api", Requirement: Requirement{Kind: KindRole}},
	}
	for _, rule := range tests {
		_, err := NewPolicy([]Rule{rule})
		assert.Error(t, err, rule.Pattern)
	}
	assert.Panics(t, func() { MustPolicy(tests[:1]) })
}

func TestPolicyRulesCopy(t *testing.T) {
	policy := MustPolicy(DefaultRules())
	rules := policy.Rules()
	require.Len(t, rules, len(DefaultRules()))
	rules[0].Requirement = RequireRole(auth.RoleAdmin)
	assert.True(t, policy.Evaluate(http.MethodPost, "/api/auth/login", nil).Allowed)
}
