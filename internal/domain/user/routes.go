package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the signed-in user's profile router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/me", h.Me)
	r.Put("/me", h.UpdateMe)
	r.Put("/me/preferences", h.UpdatePreferences)
	r.Post("/me/password", h.ChangePassword)

	return r
}

// AdminRoutes returns user management router; callers mount it behind admin auth
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Search)
	r.Post("/{id}/role", h.UpdateRole)

	return r
}
