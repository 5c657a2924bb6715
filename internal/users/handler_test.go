package users

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlinestore/onlinestore/internal/auth"
	"github.com/onlinestore/onlinestore/internal/rbac"
)

type fakeRepo struct {
	users  []User
	err    error
	limit  int
	offset int
}

func (f *fakeRepo) ListUsers(_ context.Context, limit, offset int) ([]User, error) {
	f.limit, f.offset = limit, offset
	if f.err != nil {
		return nil, f.err
	}
	if offset >= len(f.users) {
		return []User{}, nil
	}
	end := offset + limit
	if end > len(f.users) {
		end = len(f.users)
	}
	return f.users[offset:end], nil
}

func (f *fakeRepo) CountUsers(context.Context) (int, error) {
	return len(f.users), f.err
}

func newRouter(repo RepositoryPort) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mw := rbac.Middleware{
		Policy:       rbac.MustPolicy(rbac.DefaultRules()),
		Unauthorized: rbac.NewUnauthorizedHandler(logger, nil),
	}
	r := chi.NewRouter()
	r.Route("/api/admin/users", NewHandler(logger, NewService(repo), mw).MountRoutes)
	return r
}

func get(r http.Handler, target string, p *auth.Principal) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if p != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), *p))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListUsersRequiresAdmin(t *testing.T) {
	r := newRouter(&fakeRepo{})
	user := auth.NewPrincipal(1, "alice", "a@x.io", auth.RoleUser)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/admin/users", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/admin/users", &user).Code)
}

func TestListUsersPaged(t *testing.T) {
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{users: []User{
		{ID: 1, Username: "root", Email: "root@x.io", Roles: []string{"ROLE_ADMIN", "ROLE_USER"}, CreatedAt: created},
		{ID: 2, Username: "alice", Email: "a@x.io", Roles: []string{"ROLE_USER"}, CreatedAt: created},
		{ID: 3, Username: "bob", Email: "b@x.io", Roles: []string{"ROLE_USER"}, CreatedAt: created},
	}}
	r := newRouter(repo)
	admin := auth.NewPrincipal(1, "root", "root@x.io", auth.RoleAdmin)

	rec := get(r, "/api/admin/users?limit=2&offset=1", &admin)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Users []User `json:"users"`
		Page  struct {
			Limit, Offset, Total int
		} `json:"page"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Users, 2)
	assert.Equal(t, "alice", body.Users[0].Username)
	assert.Equal(t, []string{"ROLE_USER"}, body.Users[0].Roles)
	assert.Equal(t, 3, body.Page.Total)
	assert.Equal(t, 2, repo.limit)
	assert.Equal(t, 1, repo.offset)
}

func TestListUsersErrors(t *testing.T) {
	admin := auth.NewPrincipal(1, "root", "root@x.io", auth.RoleAdmin)

	rec := get(newRouter(&fakeRepo{}), "/api/admin/users?limit=x", &admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(newRouter(&fakeRepo{err: errors.New("db down")}), "/api/admin/users", &admin)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}
