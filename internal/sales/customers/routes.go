package customers

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the public read-only customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/customers", h.List)
	r.Get("/customer/{id}", h.Show)
}
