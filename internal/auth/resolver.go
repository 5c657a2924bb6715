package auth

import (
	"context"
	"errors"
	"fmt"
)

// Resolver turns a verified token subject into a Principal, reading the
// user's current roles from the credential store on every call.
type Resolver struct {
	store CredentialStore
}

// NewResolver constructs a Resolver.
func NewResolver(store CredentialStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve fetches subject from the store. A subject deleted after its token
// was issued yields ErrUserNotFound.
func (r *Resolver) Resolve(ctx context.Context, subject string) (Principal, error) {
	user, err := r.store.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Principal{}, ErrUserNotFound
		}
		return Principal{}, fmt.Errorf("auth: resolve %q: %w", subject, err)
	}
	return PrincipalFromUser(user), nil
}
