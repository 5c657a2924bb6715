package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/onlinestore/onlinestore/internal/auth"
	"github.com/onlinestore/onlinestore/internal/platform/httpx"
	"github.com/onlinestore/onlinestore/internal/rbac"
	"github.com/onlinestore/onlinestore/internal/shared"
)

// Handler manages user administration endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(auth.RoleAdmin))
		r.Get("/", h.listUsers)
	})
}

type listResponse struct {
	Users []User      `json:"users"`
	Page  shared.Page `json:"page"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := httpx.PageParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	users, page, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err), slog.String("request_id", middleware.GetReqID(r.Context())))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Users: users, Page: page})
}
