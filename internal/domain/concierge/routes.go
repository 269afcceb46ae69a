package concierge

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns public concierge routes. optionalAuth attaches the caller
// when a token is present.
func (h *Handler) Routes(optionalAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(optionalAuth)

	r.Post("/chat", h.Chat)
	r.Get("/ws", h.WebSocket)
	r.Post("/recommend-type", h.RecommendType)

	return r
}

// AdminRoutes returns chat log routes, mounted at /api/admin/chat-logs
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.AdminLogs)

	return r
}
