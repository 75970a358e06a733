package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/preedep/appinterfaceviewer/pkg/routes"
)

// errNoCatalog is returned while no catalog has been loaded yet
var errNoCatalog = errors.New("catalog not loaded")

type errorResponse struct {
	Message string `json:"message"`
}

// statusFor maps query errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, routes.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, routes.ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, routes.ErrSearchBudgetExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errNoCatalog):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
