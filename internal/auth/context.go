package auth

import "context"

type principalContextKey struct{}

// WithPrincipal binds p to the request context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, &p)
}

// withoutPrincipal masks any principal carried by ctx.
func withoutPrincipal(ctx context.Context) context.Context {
	if _, ok := PrincipalFromContext(ctx); !ok {
		return ctx
	}
	return context.WithValue(ctx, principalContextKey{}, (*Principal)(nil))
}

// PrincipalFromContext returns the principal bound to ctx, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok || p == nil {
		return Principal{}, false
	}
	return *p, true
}
