package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/domain"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/logger"
)

const (
	msgInternal    = "Internal server error"
	msgInvalidJSON = "Request body must be a JSON object"
	msgBodyTooBig  = "Request body too large"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type dataResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps service errors to responses. Validation messages
// are returned verbatim; anything unexpected is logged and hidden.
func writeServiceError(w http.ResponseWriter, log logger.Logger, notFound string, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	default:
		log.Error("request failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}
