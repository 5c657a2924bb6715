package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Gate authenticates bearer tokens. It never rejects a request: a missing or
// unusable token leaves the request anonymous and the authorization policy
// decides what anonymous callers may reach.
type Gate struct {
	codec    *TokenCodec
	resolver *Resolver
	logger   *slog.Logger
	metrics  Metrics
}

// NewGate constructs a Gate. A nil metrics sink is allowed.
func NewGate(codec *TokenCodec, resolver *Resolver, logger *slog.Logger, metrics Metrics) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Gate{codec: codec, resolver: resolver, logger: logger, metrics: metrics}
}

// Middleware binds the resolved principal, if any, to the request context.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := withoutPrincipal(r.Context())
		r = r.WithContext(ctx)
		if p, ok := g.authenticate(r); ok {
			r = r.WithContext(WithPrincipal(ctx, p))
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) authenticate(r *http.Request) (Principal, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Principal{}, false
	}
	token, ok := bearerToken(header)
	if !ok {
		g.logger.Debug("authorization header without bearer token",
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		return Principal{}, false
	}

	subject, err := g.codec.Verify(token)
	if err != nil {
		reason := tokenErrorReason(err)
		g.metrics.TokenRejected(reason)
		g.logger.Warn("bearer token rejected",
			slog.String("reason", reason),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("error", err))
		return Principal{}, false
	}

	p, err := g.resolver.Resolve(r.Context(), subject)
	if err != nil {
		g.metrics.TokenRejected("unresolved_subject")
		g.logger.Warn("token subject not resolved",
			slog.String("subject", subject),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("error", err))
		return Principal{}, false
	}
	return p, true
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" value.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
