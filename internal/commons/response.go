package commons

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"stockledger/internal/dto"
	apperrors "stockledger/internal/errors"
)

var statusByKind = map[apperrors.Kind]int{
	apperrors.KindValidation:        http.StatusBadRequest,
	apperrors.KindNotFound:          http.StatusNotFound,
	apperrors.KindInsufficientStock: http.StatusUnprocessableEntity,
	apperrors.KindConflict:          http.StatusConflict,
	apperrors.KindForbidden:         http.StatusForbidden,
	apperrors.KindUnauthorized:      http.StatusUnauthorized,
	apperrors.KindDeadlock:          http.StatusConflict,
	apperrors.KindInternal:          http.StatusInternalServerError,
}

// StatusFor maps an application error to its HTTP status.
func StatusFor(err error) int {
	if status, ok := statusByKind[apperrors.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// WriteError renders err in the common error envelope. System failures are
// logged and their message is not exposed.
func WriteError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	kind := apperrors.KindOf(err)
	status := StatusFor(err)
	message := err.Error()

	var details []apperrors.ValidationDetail
	if ve, ok := apperrors.IsValidationError(err); ok {
		message = ve.Message
		details = ve.Details
	}

	if kind == apperrors.KindInternal {
		logger.Error("unexpected error", zap.String("traceId", traceID), zap.Error(err))
		message = "an unexpected error occurred"
	} else {
		logger.Info("request rejected", zap.String("traceId", traceID), zap.String("code", string(kind)), zap.String("message", message))
	}

	WriteJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Message:   message,
		Code:      string(kind),
		Details:   details,
		Timestamp: time.Now().UTC(),
	}, logger)
}
