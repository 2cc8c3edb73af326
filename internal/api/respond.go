package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"docstruct/internal/structure"
)

func jsonOK(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeServiceError maps the engine's error taxonomy onto HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var notFound *structure.NotFoundError
	var badFormat *structure.FormatError
	switch {
	case errors.As(err, &notFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &badFormat):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, structure.ErrStructuringInProgress):
		jsonError(w, err.Error(), http.StatusConflict)
	default:
		s.log.Error("request failed", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}
