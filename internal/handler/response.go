package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Raymond9734/acme-dashboard-backend/internal/models"
	"github.com/Raymond9734/acme-dashboard-backend/internal/service"
)

// ErrorResponse is the body of a fatal error
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

func respondSuccess(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondState renders a failed form: 422 with field errors, 500 when only a
// message is left to show
func respondState(w http.ResponseWriter, state *service.FormState) {
	status := http.StatusInternalServerError
	if len(state.Errors) > 0 {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, state)
}

func respondBadForm(w http.ResponseWriter) {
	respondError(w, http.StatusBadRequest, models.CodeInvalidInput, "Invalid form submission")
}
