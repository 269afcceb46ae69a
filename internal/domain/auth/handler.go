package auth

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/aihotel/hotel-api/internal/domain/user"
	"github.com/aihotel/hotel-api/internal/middleware"
	"github.com/aihotel/hotel-api/internal/pkg/errorhandler"
	"github.com/aihotel/hotel-api/internal/pkg/password"
	"github.com/aihotel/hotel-api/internal/pkg/response"
	"github.com/aihotel/hotel-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, "auth.register", err)
		return
	}
	response.Created(w, result)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, "auth.login", err)
		return
	}
	response.OK(w, result)
}

// RequestMagicLink handles POST /auth/magic-link
func (h *Handler) RequestMagicLink(w http.ResponseWriter, r *http.Request) {
	var req MagicLinkRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.RequestMagicLink(r.Context(), req.Email); err != nil {
		h.handleError(w, r, "auth.magic_link", err)
		return
	}
	response.Accepted(w, map[string]string{"message": "If the address is valid, a sign-in link is on its way"})
}

// VerifyMagicLink handles GET /auth/magic-link/verify?token=
func (h *Handler) VerifyMagicLink(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.BadRequest(w, "token is required")
		return
	}

	result, err := h.service.VerifyMagicLink(r.Context(), token)
	if err != nil {
		h.handleError(w, r, "auth.magic_link_verify", err)
		return
	}
	response.OK(w, result)
}

// GoogleURL handles GET /auth/google
func (h *Handler) GoogleURL(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.service.GoogleAuthURL()
	if err != nil {
		h.handleError(w, r, "auth.google_url", err)
		return
	}
	response.OK(w, map[string]string{"url": authURL})
}

// GoogleCallback handles GET /auth/google/callback and returns the browser
// to the frontend with the access token in the fragment
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := h.service.FrontendURL() + "/auth/callback"

	if q.Get("error") != "" || q.Get("code") == "" {
		http.Redirect(w, r, target+"#error=google_sign_in_canceled", http.StatusFound)
		return
	}

	result, err := h.service.GoogleCallback(r.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		log.Warn().Err(err).Msg("Google sign-in failed")
		http.Redirect(w, r, target+"#error=google_sign_in_failed", http.StatusFound)
		return
	}

	fragment := url.Values{}
	fragment.Set("access_token", result.Tokens.AccessToken)
	fragment.Set("token_type", result.Tokens.TokenType)
	http.Redirect(w, r, target+"#"+fragment.Encode(), http.StatusFound)
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Me(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.handleError(w, r, "auth.me", err)
		return
	}
	response.OK(w, user.UserResponseFromEntity(u))
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrEmailAlreadyExists):
		response.Conflict(w, "An account with that email already exists")
	case errors.Is(err, ErrInvalidCredentials):
		response.Unauthorized(w, "Invalid email or password")
	case errors.Is(err, ErrInvalidLink):
		response.Unauthorized(w, "This sign-in link is invalid or has expired")
	case errors.Is(err, ErrLinkAlreadyUsed):
		response.Error(w, http.StatusGone, "LINK_USED", "This sign-in link has already been used")
	case errors.Is(err, ErrGoogleDisabled):
		response.Error(w, http.StatusNotImplemented, "GOOGLE_DISABLED", "Google sign-in is not configured")
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, password.ErrTooShort):
		response.ValidationError(w, map[string]string{"password": password.ErrTooShort.Error()})
	case errors.Is(err, password.ErrMismatch):
		response.ValidationError(w, map[string]string{"confirm_password": password.ErrMismatch.Error()})
	default:
		errorhandler.HandleInternal(r.Context(), w, op, err)
	}
}
