package rbac

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlinestore/onlinestore/internal/auth"
)

type denials struct {
	mu      sync.Mutex
	reasons []string
}

func (d *denials) AccessDenied(reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reasons = append(d.reasons, reason)
}

func newTestMiddleware(metrics DenialRecorder) Middleware {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return Middleware{
		Policy:       MustPolicy(DefaultRules()),
		Unauthorized: NewUnauthorizedHandler(logger, metrics),
		Logger:       logger,
	}
}

func serve(h http.Handler, method, path string, p *auth.Principal) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if p != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), *p))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthorizeUniformDenial(t *testing.T) {
	metrics := &denials{}
	h := newTestMiddleware(metrics).Authorize(okHandler)

	anonymous := serve(h, http.MethodGet, "/api/admin/users", nil)
	wrongRole := serve(h, http.MethodGet, "/api/admin/users", principal(auth.RoleUser))

	for _, rec := range []*httptest.ResponseRecorder{anonymous, wrongRole} {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, map[string]any{"status": float64(401), "message": "Unauthorized"}, body)
	}
	assert.Equal(t, anonymous.Body.String(), wrongRole.Body.String())
	assert.Len(t, metrics.reasons, 2)
}

func TestAuthorizeAllows(t *testing.T) {
	h := newTestMiddleware(nil).Authorize(okHandler)

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/data/show/orders", nil).Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/me", principal(auth.RoleUser)).Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/admin/users", principal(auth.RoleAdmin)).Code)
}

func TestRequireAny(t *testing.T) {
	m := newTestMiddleware(nil)
	h := m.RequireAny(" role_admin ", auth.RoleAdmin)(okHandler)

	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodGet, "/x", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodGet, "/x", principal(auth.RoleUser)).Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/x", principal(auth.RoleAdmin)).Code)

	open := m.RequireAny()(okHandler)
	assert.Equal(t, http.StatusOK, serve(open, http.MethodGet, "/x", nil).Code)
}

func TestNormalizeRoles(t *testing.T) {
	got := normalizeRoles([]auth.RoleName{"role_user", "ROLE_USER", " ", "ROLE_ADMIN"})
	assert.Equal(t, []auth.RoleName{auth.RoleUser, auth.RoleAdmin}, got)
}
