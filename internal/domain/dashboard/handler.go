package dashboard

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aihotel/hotel-api/internal/pkg/errorhandler"
	"github.com/aihotel/hotel-api/internal/pkg/response"
)

// Handler handles admin dashboard requests
type Handler struct {
	service   *Service
	retrainer *Retrainer
}

// NewHandler creates dashboard handler
func NewHandler(service *Service, retrainer *Retrainer) *Handler {
	return &Handler{service: service, retrainer: retrainer}
}

// Overview handles GET /api/admin/dashboard
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context(), time.Now())
	if err != nil {
		errorhandler.HandleInternal(r.Context(), w, "dashboard.overview", err)
		return
	}
	response.OK(w, overview)
}

// Revenue handles GET /api/admin/dashboard/revenue?year=
func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1970 || parsed > 9999 {
			response.BadRequest(w, "Invalid year")
			return
		}
		year = parsed
	}

	series, err := h.service.MonthlyRevenue(r.Context(), year)
	if err != nil {
		errorhandler.HandleInternal(r.Context(), w, "dashboard.revenue", err)
		return
	}
	response.OK(w, series)
}

// Forecast handles GET /api/admin/dashboard/forecast
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	forecast, err := h.service.Forecast(r.Context(), time.Now())
	if err != nil {
		errorhandler.HandleInternal(r.Context(), w, "dashboard.forecast", err)
		return
	}
	response.OK(w, forecast)
}

// Retrain handles POST /api/admin/ai/retrain
func (h *Handler) Retrain(w http.ResponseWriter, r *http.Request) {
	err := h.retrainer.Trigger()
	switch {
	case err == nil:
		response.Accepted(w, map[string]string{"message": "Model retraining started"})
	case errors.Is(err, ErrRetrainRunning):
		response.Conflict(w, "Model retraining is already running")
	case errors.Is(err, ErrRetrainDisabled):
		response.Error(w, http.StatusServiceUnavailable, "RETRAIN_DISABLED", "Model retraining is not configured")
	default:
		errorhandler.HandleInternal(r.Context(), w, "dashboard.retrain", err)
	}
}
