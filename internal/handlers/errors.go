package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/appcloud-project/decision-service/internal/service"
)

// Error is an RFC 7807 style problem response.
type Error struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	Status int    `json:"status"`
}

func writeError(w http.ResponseWriter, errType, title, detail string, status int) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Error{
		Type:   errType,
		Title:  title,
		Detail: detail,
		Status: status,
	})
}

// writeServiceError maps a service error code onto an HTTP status.
func writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *service.ServiceError
	if errors.As(err, &svcErr) {
		switch svcErr.Code {
		case service.ErrCodeValidation:
			writeError(w, "validation-error", "Validation failed", svcErr.Message, http.StatusBadRequest)
			return
		case service.ErrCodeNotFound:
			writeError(w, "not-found", "Resource not found", svcErr.Message, http.StatusNotFound)
			return
		case service.ErrCodeConflict:
			writeError(w, "conflict", "Resource conflict", svcErr.Message, http.StatusConflict)
			return
		case service.ErrCodeUpstream:
			writeError(w, "upstream-error", "Eloqua request failed", svcErr.Message, http.StatusBadGateway)
			return
		}
	}
	writeError(w, "internal-error", "Internal error", err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
