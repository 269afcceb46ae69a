package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns auth router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/magic-link", h.RequestMagicLink)
	r.Get("/magic-link/verify", h.VerifyMagicLink)
	r.Get("/google", h.GoogleURL)
	r.Get("/google/callback", h.GoogleCallback)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/me", h.Me)
	})

	return r
}
