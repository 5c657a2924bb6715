package auth

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/onlinestore/onlinestore/testing"
)

var testSecret = []byte("test-secret-key-for-jwt-signing-0123456789")

// memoryStore is a CredentialStore kept in maps. Save enforces username
// uniqueness the way the database index does.
type memoryStore struct {
	mu      sync.Mutex
	users   map[string]*User
	roles   map[RoleName]Role
	nextID  int64
	findErr error
	saves   int
}

func newMemoryStore(roles ...RoleName) *memoryStore {
	if roles == nil {
		roles = KnownRoles()
	}
	s := &memoryStore{users: map[string]*User{}, roles: map[RoleName]Role{}, nextID: 1}
	for i, name := range roles {
		s.roles[name] = Role{ID: int64(i + 1), Name: name}
	}
	return s
}

func (s *memoryStore) FindByUsername(_ context.Context, username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	u, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	cp.Roles = append([]Role(nil), u.Roles...)
	return &cp, nil
}

func (s *memoryStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[username]
	return ok, nil
}

func (s *memoryStore) Save(_ context.Context, user *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return nil, ErrUsernameTaken
	}
	cp := *user
	cp.ID = s.nextID
	cp.Roles = append([]Role(nil), user.Roles...)
	s.nextID++
	s.users[cp.Username] = &cp
	s.saves++
	out := cp
	return &out, nil
}

func (s *memoryStore) FindRoleByName(_ context.Context, name RoleName) (*Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[name]
	if !ok {
		return nil, ErrRoleNotConfigured
	}
	return &r, nil
}

func (s *memoryStore) setRoles(username string, names ...RoleName) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[username]
	u.Roles = nil
	for _, n := range names {
		u.Roles = append(u.Roles, s.roles[n])
	}
}

func (s *memoryStore) remove(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, username)
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

type recordingMetrics struct {
	mu       sync.Mutex
	logins   []string
	rejected []string
}

func (m *recordingMetrics) LoginAttempt(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins = append(m.logins, outcome)
}

func (m *recordingMetrics) TokenRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected = append(m.rejected, reason)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHasher() BcryptHasher {
	return BcryptHasher{Cost: bcrypt.MinCost}
}

func newTestCodec(t *testing.T, clock *fakeClock) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testSecret, 24*time.Hour, "onlinestore", WithClock(clock.Now))
	require.NoError(t, err)
	return codec
}

func newTestService(t *testing.T, store CredentialStore, codec *TokenCodec, cfg ServiceConfig) *Service {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = discardLogger()
	}
	svc, err := NewService(store, testHasher(), codec, cfg)
	require.NoError(t, err)
	return svc
}

func seedUser(t *testing.T, store *memoryStore, username, email, password string, roles ...RoleName) *User {
	t.Helper()
	hash, err := testHasher().Hash(password)
	require.NoError(t, err)
	u := &User{Username: username, Email: email, PasswordHash: hash}
	for _, r := range roles {
		role, err := store.FindRoleByName(context.Background(), r)
		require.NoError(t, err)
		u.Roles = append(u.Roles, *role)
	}
	saved, err := store.Save(context.Background(), u)
	require.NoError(t, err)
	return saved
}
