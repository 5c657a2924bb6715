package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/onlinestore/onlinestore/internal/platform/httpx"
)

// DenialRecorder counts requests refused by the policy.
type DenialRecorder interface {
	AccessDenied(reason string)
}

// UnauthorizedHandler writes the uniform response for every refused request.
// The reason is logged but never sent to the client.
type UnauthorizedHandler struct {
	logger  *slog.Logger
	metrics DenialRecorder
}

// NewUnauthorizedHandler constructs an UnauthorizedHandler. metrics may be nil.
func NewUnauthorizedHandler(logger *slog.Logger, metrics DenialRecorder) *UnauthorizedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UnauthorizedHandler{logger: logger, metrics: metrics}
}

// Handle responds 401 with the standard error body.
func (h *UnauthorizedHandler) Handle(w http.ResponseWriter, r *http.Request, reason string) {
	h.logger.Info("request unauthorized",
		slog.String("reason", reason),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.GetReqID(r.Context())))
	if h.metrics != nil {
		h.metrics.AccessDenied(reason)
	}
	w.Header().Set("WWW-Authenticate", "Bearer")
	httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
}
