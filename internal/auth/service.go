package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// RolePolicy decides what happens to unrecognised role names at signup.
type RolePolicy string

const (
	// RolePolicyFallback maps unrecognised names to ROLE_USER. It is the default.
	RolePolicyFallback RolePolicy = "fallback"
	// RolePolicyReject fails signup with ErrUnknownRole.
	RolePolicyReject RolePolicy = "reject"
)

// ParseRolePolicy validates a configured policy name.
func ParseRolePolicy(s string) (RolePolicy, error) {
	switch p := RolePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case RolePolicyReject, RolePolicyFallback:
		return p, nil
	case "":
		return RolePolicyFallback, nil
	default:
		return "", fmt.Errorf("auth: unknown signup role policy %q", s)
	}
}

// ServiceConfig carries tunables for Service.
type ServiceConfig struct {
	RolePolicy RolePolicy
	Throttle   LoginThrottle
	Metrics    Metrics
	Logger     *slog.Logger
	Now        func() time.Time
}

// Service wraps authentication business rules.
type Service struct {
	store      CredentialStore
	hasher     PasswordHasher
	codec      *TokenCodec
	rolePolicy RolePolicy
	throttle   LoginThrottle
	metrics    Metrics
	logger     *slog.Logger
	now        func() time.Time
	dummyHash  string
}

// NewService constructs a new Service.
func NewService(store CredentialStore, hasher PasswordHasher, codec *TokenCodec, cfg ServiceConfig) (*Service, error) {
	s := &Service{
		store:      store,
		hasher:     hasher,
		codec:      codec,
		rolePolicy: cfg.RolePolicy,
		throttle:   cfg.Throttle,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		now:        cfg.Now,
	}
	if s.rolePolicy == "" {
		s.rolePolicy = RolePolicyFallback
	}
	if s.throttle == nil {
		s.throttle = NoopThrottle{}
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	// Unknown usernames are checked against dummyHash so both failure paths cost one bcrypt compare.
	dummy, err := hasher.Hash("onlinestore-timing-equaliser")
	if err != nil {
		return nil, err
	}
	s.dummyHash = dummy
	return s, nil
}

// LoginInput carries credentials submitted at login.
type LoginInput struct {
	Username string
	Password string
	ClientIP string
}

// LoginResult is returned on successful login. Roles are informational; they
// are re-read from the store on every authenticated request.
type LoginResult struct {
	Token    string
	UserID   int64
	Username string
	Email    string
	Roles    []string
}

// Login verifies credentials and issues a token.
func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	key := ThrottleKey(in.Username, in.ClientIP)
	allowed, err := s.throttle.Acquire(ctx, key)
	if err != nil {
		// Fail open when the throttle store is unreachable.
		s.logger.Warn("login throttle unavailable", slog.Any("error", err))
		allowed = true
	}
	if !allowed {
		s.metrics.LoginAttempt("throttled")
		return LoginResult{}, ErrTooManyAttempts
	}

	user, err := s.store.FindByUsername(ctx, in.Username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		s.metrics.LoginAttempt("error")
		return LoginResult{}, fmt.Errorf("auth: login lookup: %w", err)
	}
	if user == nil {
		s.hasher.Verify(in.Password, s.dummyHash)
		s.failLogin(in.Username, "unknown_user")
		return LoginResult{}, ErrInvalidCredentials
	}
	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		s.failLogin(in.Username, "bad_password")
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.Username)
	if err != nil {
		s.metrics.LoginAttempt("error")
		return LoginResult{}, err
	}
	if err := s.throttle.Reset(ctx, key); err != nil {
		s.logger.Warn("reset login throttle", slog.Any("error", err))
	}
	s.metrics.LoginAttempt("success")

	p := PrincipalFromUser(user)
	return LoginResult{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    p.RoleStrings(),
	}, nil
}

// failLogin leaves the attempt counted by Acquire in place.
func (s *Service) failLogin(username, reason string) {
	s.metrics.LoginAttempt("invalid_credentials")
	s.logger.Info("login rejected", slog.String("username", username), slog.String("reason", reason))
}

// SignupInput carries a registration request.
type SignupInput struct {
	Username string
	Email    string
	Password string
	Roles    []string
}

// Signup registers a new user.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*User, error) {
	if len(in.Password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	exists, err := s.store.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("auth: signup lookup: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	names, err := s.mapRoles(in.Roles)
	if err != nil {
		return nil, err
	}
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		role, err := s.store.FindRoleByName(ctx, name)
		if err != nil {
			if errors.Is(err, ErrRoleNotConfigured) {
				s.logger.Error("role missing from role table", slog.String("role", string(name)))
			}
			return nil, err
		}
		roles = append(roles, *role)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.Save(ctx, &User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
		Roles:        roles,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", slog.String("username", saved.Username), slog.Any("roles", saved.RoleNames()))
	return saved, nil
}

// mapRoles resolves requested role names to a distinct, ordered role list.
func (s *Service) mapRoles(requested []string) ([]RoleName, error) {
	if len(requested) == 0 {
		return []RoleName{RoleUser}, nil
	}
	seen := make(map[RoleName]struct{}, len(requested))
	out := make([]RoleName, 0, len(requested))
	for _, raw := range requested {
		role, ok := LookupRequestedRole(raw)
		if !ok {
			if s.rolePolicy == RolePolicyReject {
				return nil, fmt.Errorf("%w: %q", ErrUnknownRole, raw)
			}
			role = RoleUser
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out, nil
}

// Logout acknowledges a logout. Tokens stay valid until they expire.
func (s *Service) Logout(ctx context.Context, p *Principal) {
	if p == nil {
		return
	}
	s.logger.Info("user logged out", slog.String("username", p.Username))
}

// CheckRoles verifies every known role exists in the role table.
func (s *Service) CheckRoles(ctx context.Context) error {
	for _, name := range KnownRoles() {
		if _, err := s.store.FindRoleByName(ctx, name); err != nil {
			if errors.Is(err, ErrRoleNotConfigured) {
				return fmt.Errorf("%w: %s", ErrRoleNotConfigured, name)
			}
			return fmt.Errorf("auth: check role %s: %w", name, err)
		}
	}
	return nil
}
