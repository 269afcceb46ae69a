package errorhandler

import (
	"context"
	"net/http"

	"github.com/aihotel/hotel-api/internal/pkg/logger"
	"github.com/aihotel/hotel-api/internal/pkg/response"
)

// HandleError logs a failed request and writes the error envelope
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	event := logger.FromContext(ctx).Error().
		Str("error_code", code).
		Str("error_message", message).
		Int("status_code", status)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg("Request error")

	response.Error(w, status, code, message)
}

// HandleInternal logs err and writes a generic 500
func HandleInternal(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	logger.FromContext(ctx).Error().
		Err(err).
		Str("operation", operation).
		Msg("Internal error")
	response.InternalError(w)
}

// LogValidationError logs validation errors with details
func LogValidationError(ctx context.Context, fieldErrors map[string]string) {
	logger.FromContext(ctx).Warn().
		Interface("validation_errors", fieldErrors).
		Msg("Validation error")
}

// LogExternalServiceError logs a soft failure of an outbound call
func LogExternalServiceError(ctx context.Context, service, endpoint string, statusCode int, err error) {
	logger.FromContext(ctx).Warn().
		Str("external_service", service).
		Str("endpoint", endpoint).
		Int("status_code", statusCode).
		Err(err).
		Msg("External service unavailable, using fallback")
}
