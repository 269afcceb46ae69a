package dashboard

import (
	"github.com/go-chi/chi/v5"
)

// AdminRoutes returns dashboard routes, mounted at /api/admin/dashboard
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Overview)
	r.Get("/revenue", h.Revenue)
	r.Get("/forecast", h.Forecast)

	return r
}

// AIRoutes returns model maintenance routes, mounted at /api/admin/ai
func (h *Handler) AIRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/retrain", h.Retrain)

	return r
}
