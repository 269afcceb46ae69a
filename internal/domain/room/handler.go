package room

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aihotel/hotel-api/internal/pkg/errorhandler"
	"github.com/aihotel/hotel-api/internal/pkg/response"
	"github.com/aihotel/hotel-api/internal/pkg/storage"
	"github.com/aihotel/hotel-api/internal/pkg/validator"
)

// Handler handles room HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates room handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /rooms
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	roomType := Type(r.URL.Query().Get("type"))
	if roomType != "" && !roomType.IsValid() {
		response.BadRequest(w, "Invalid room type")
		return
	}

	rooms, err := h.service.List(r.Context(), roomType)
	if err != nil {
		errorhandler.HandleInternal(r.Context(), w, "room.list", err)
		return
	}

	items := make([]*RoomResponse, len(rooms))
	for i, room := range rooms {
		items[i] = RoomResponseFromEntity(room)
	}
	response.List(w, items, len(items))
}

// GetByID handles GET /rooms/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid room ID")
		return
	}

	room, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleError(w, r, "room.get", err)
		return
	}

	response.OK(w, RoomResponseFromEntity(room))
}

// Create handles POST /admin/rooms
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	room, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, "room.create", err)
		return
	}

	response.Created(w, RoomResponseFromEntity(room))
}

// Update handles PUT /admin/rooms/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid room ID")
		return
	}

	var req UpdateRoomRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	room, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.handleError(w, r, "room.update", err)
		return
	}

	response.OK(w, RoomResponseFromEntity(room))
}

// Delete handles DELETE /admin/rooms/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid room ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleError(w, r, "room.delete", err)
		return
	}

	response.NoContent(w)
}

// UploadImage handles POST /admin/rooms/{id}/images (multipart field "image")
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid room ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageSize+1<<20)
	if err := r.ParseMultipartForm(storage.MaxImageSize); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "Image file is required")
		return
	}
	defer file.Close()

	url, err := h.service.UploadImage(r.Context(), id, file)
	if err != nil {
		h.handleError(w, r, "room.upload_image", err)
		return
	}

	response.Created(w, map[string]string{"url": url})
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		response.NotFound(w, "Room not found")
	case errors.Is(err, ErrRoomNumberTaken):
		response.Conflict(w, "Room number already exists")
	case errors.Is(err, ErrRoomHasReservations):
		response.Conflict(w, "Room has active reservations")
	case errors.Is(err, ErrInvalidImage):
		errorhandler.HandleError(r.Context(), w, http.StatusBadRequest, "INVALID_IMAGE", "Only JPEG, PNG or GIF images up to 10MB are accepted", err)
	case errors.Is(err, ErrImageStorage):
		errorhandler.HandleError(r.Context(), w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Image storage is unavailable", err)
	default:
		errorhandler.HandleInternal(r.Context(), w, op, err)
	}
}
