package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aihotel/hotel-api/internal/middleware"
	"github.com/aihotel/hotel-api/internal/pkg/errorhandler"
	"github.com/aihotel/hotel-api/internal/pkg/password"
	"github.com/aihotel/hotel-api/internal/pkg/response"
	"github.com/aihotel/hotel-api/internal/pkg/validator"
)

// Handler handles profile and user management HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates user handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Me handles GET /users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.handleError(w, r, "user.me", err)
		return
	}
	response.OK(w, UserResponseFromEntity(user))
}

// UpdateMe handles PUT /users/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), req.Name)
	if err != nil {
		h.handleError(w, r, "user.update", err)
		return
	}
	response.OK(w, UserResponseFromEntity(user))
}

// UpdatePreferences handles PUT /users/me/preferences
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	user, err := h.service.UpdatePreferences(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.handleError(w, r, "user.preferences", err)
		return
	}
	response.OK(w, UserResponseFromEntity(user))
}

// ChangePassword handles POST /users/me/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.ChangePassword(r.Context(), middleware.GetUserID(r.Context()), &req); err != nil {
		h.handleError(w, r, "user.password", err)
		return
	}
	response.OK(w, map[string]string{"message": "Password changed successfully"})
}

// Search handles GET /admin/users?search=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.handleError(w, r, "user.search", err)
		return
	}

	items := make([]*UserResponse, len(users))
	for i, u := range users {
		items[i] = UserResponseFromEntity(u)
	}
	response.List(w, items, len(items))
}

// UpdateRole handles POST /admin/users/{id}/role
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req UpdateRoleRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := h.service.SetRole(r.Context(), middleware.GetUserID(r.Context()), id, Role(req.Role))
	if err != nil {
		h.handleError(w, r, "user.role", err)
		return
	}
	response.OK(w, UserResponseFromEntity(user))
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(w, http.StatusBadRequest, "INVALID_PASSWORD", "Incorrect current password")
	case errors.Is(err, password.ErrTooShort):
		response.ValidationError(w, map[string]string{"new_password": password.ErrTooShort.Error()})
	case errors.Is(err, password.ErrMismatch):
		response.ValidationError(w, map[string]string{"confirm_password": "New passwords do not match"})
	case errors.Is(err, ErrInvalidRole):
		response.BadRequest(w, "Invalid role")
	case errors.Is(err, ErrSelfDemotion):
		response.Error(w, http.StatusConflict, "SELF_DEMOTION", "You cannot remove your own admin role")
	default:
		errorhandler.HandleInternal(r.Context(), w, op, err)
	}
}
