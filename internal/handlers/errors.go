package handlers

import (
	"errors"
	"net/http"

	"taskmanager/internal/logger"
	"taskmanager/internal/service"

	"go.uber.org/zap"
)

// handleServiceError converts service failures into HTTP responses. Business
// errors keep their code and details; anything else is an internal error
// answered with a generic message.
func handleServiceError(w http.ResponseWriter, err error, operation string) {
	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		logger.Warn("HTTP: business error",
			zap.String("operation", operation),
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode))

		responseWithJSON(w, statusCode,
			toPayload("error", businessErr.Code),
			toPayload("message", businessErr.Message),
			toPayload("details", businessErr.Details),
		)
		return
	}

	logger.Error("HTTP: service error", err, zap.String("operation", operation))
	responseWithError(w, http.StatusInternalServerError, "internal server error")
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeForbidden:
		// The observed contract answers ownership failures with 401.
		return http.StatusUnauthorized
	case service.CodeValidation,
		service.CodeDuplicateEmail,
		service.CodeEmailInUse,
		service.CodeUnknownEmail,
		service.CodeInvalidCredentials,
		service.CodeWeakPassword:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
