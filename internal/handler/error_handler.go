package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Raymond9734/acme-dashboard-backend/internal/models"
	"github.com/Raymond9734/acme-dashboard-backend/internal/validation"
)

const msgUnexpected = "An unexpected error occurred"

var statusByCode = map[string]int{
	models.CodeInvalidInput: http.StatusBadRequest,
	models.CodeNotFound:     http.StatusNotFound,
	models.CodeConflict:     http.StatusConflict,
	models.CodeUnauthorized: http.StatusUnauthorized,
}

// handleError maps fatal service errors to HTTP responses. Only AppError
// messages and sentinel matches reach the client.
func handleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		respondError(w, statusForCode(appErr.Code), appErr.Code, appErr.Message)
		return
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, models.CodeNotFound, err.Error())

	case errors.Is(err, models.ErrAlreadyExists), errors.Is(err, models.ErrConflict):
		respondError(w, http.StatusConflict, models.CodeConflict, err.Error())

	case errors.Is(err, validation.ErrInvalidSubmission):
		// an edit form posted data it could not have produced
		logger.Error("rejected form submission", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, models.CodeInternal, msgUnexpected)

	default:
		logger.Error("internal server error", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, models.CodeInternal, msgUnexpected)
	}
}

func statusForCode(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
