package orders

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the public read-only order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/order/{id}", h.Show)
}
