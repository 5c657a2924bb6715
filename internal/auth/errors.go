package auth

import (
	"errors"

	"github.com/onlinestore/onlinestore/internal/shared"
)

// Token verification failures.
var (
	ErrMalformedToken = errors.New("auth: malformed token")
	ErrBadSignature   = errors.New("auth: bad token signature")
	ErrExpiredToken   = errors.New("auth: token expired")
)

var (
	// ErrUserNotFound indicates the token subject no longer exists.
	ErrUserNotFound = errors.New("auth: user not found")
	// ErrInvalidCredentials is the single login failure reported to clients.
	ErrInvalidCredentials = shared.ErrInvalidCredentials
	// ErrUsernameTaken indicates signup with an existing username.
	ErrUsernameTaken = errors.New("auth: username exists")
	// ErrRoleNotConfigured indicates a baseline role is missing from the role table.
	ErrRoleNotConfigured = errors.New("auth: role not configured")
	// ErrUnknownRole indicates signup requested a role name that maps to no role.
	ErrUnknownRole = errors.New("auth: unknown role")
	// ErrPasswordTooLong indicates a password over MaxPasswordBytes.
	ErrPasswordTooLong = errors.New("auth: password too long")
	// ErrTooManyAttempts indicates login is throttled for the username and client.
	ErrTooManyAttempts = errors.New("auth: too many login attempts")
)

// tokenErrorReason names a verification failure for logs and metrics.
func tokenErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrExpiredToken):
		return "expired"
	case errors.Is(err, ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	default:
		return "unknown"
	}
}
