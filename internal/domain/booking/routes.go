package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns guest booking router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/", h.Create)
	r.Get("/", h.ListMy)
	r.Get("/proposal", h.Proposal)
	r.Post("/confirm", h.Confirm)
	r.Post("/{id}/cancel", h.Cancel)
	r.Get("/{id}/invoice", h.Invoice)

	return r
}

// AvailabilityRoutes returns public availability router
func (h *Handler) AvailabilityRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Availability)
	r.Get("/rooms", h.RoomsForDates)

	return r
}

// AdminRoutes returns booking management router; callers mount it behind admin auth
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.AdminList)
	r.Post("/", h.AdminCreate)
	r.Post("/{id}/checkout", h.AdminCheckout)

	return r
}
