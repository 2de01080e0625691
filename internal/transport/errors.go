package transport

import (
	"errors"
	"net/http"

	"shop-catalog/internal/domain"
	"shop-catalog/internal/middleware"

	"go.uber.org/zap"
)

// statusFor maps a service error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case domain.IsReferenceError(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateImageName), errors.Is(err, domain.ErrFileExists):
		return http.StatusConflict
	case domain.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrBrandNotFound),
		errors.Is(err, domain.ErrImageNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCategoryInUse), errors.Is(err, domain.ErrBrandInUse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError writes the error envelope for err. Unexpected errors are
// logged and hidden behind a generic message.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		logger.Error("Failed to "+action, zap.Error(err))
		middleware.RespondWithError(w, status, "failed to "+action)
		return
	}

	logger.Debug("Request rejected", zap.String("action", action), zap.Int("status", status), zap.Error(err))

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		middleware.RespondWithErrorDetails(w, status, ve.Err.Error(), map[string]interface{}{
			"field": ve.Field,
			"value": ve.Value,
		})
		return
	}

	middleware.RespondWithError(w, status, rootMessage(err))
}

// rootMessage returns the message of the innermost wrapped error
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// respondWithDecodeError reports a request body that failed to decode or validate
func respondWithDecodeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	logger.Debug("Request validation failed", zap.Error(err))

	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}
