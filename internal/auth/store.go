package auth

import "context"

// CredentialStore persists users and the fixed role table.
type CredentialStore interface {
	// FindByUsername returns the user with its current roles or ErrUserNotFound.
	FindByUsername(ctx context.Context, username string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Save inserts user with its roles. A duplicate username yields ErrUsernameTaken.
	Save(ctx context.Context, user *User) (*User, error)
	// FindRoleByName returns the role row or ErrRoleNotConfigured.
	FindRoleByName(ctx context.Context, name RoleName) (*Role, error)
}

// Metrics receives authentication outcomes. Implementations must be safe for
// concurrent use.
type Metrics interface {
	LoginAttempt(outcome string)
	TokenRejected(reason string)
}

type nopMetrics struct{}

func (nopMetrics) LoginAttempt(string)  {}
func (nopMetrics) TokenRejected(string) {}
