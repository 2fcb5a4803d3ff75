package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	dataprep "lantern/internal/dataprep/domain"
)

// StatusFor maps pipeline errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidJSON),
		errors.Is(err, dataprep.ErrInvalidSeason),
		errors.Is(err, dataprep.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, dataprep.ErrSourceNotFound):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
