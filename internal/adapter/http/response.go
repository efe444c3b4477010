package http

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/stormhaven/stormhaven/internal/domain"
	"github.com/stormhaven/stormhaven/internal/favorites"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // response already committed
}

// writeError maps failures to the API error contract: bad input is 400 with
// the parse message, a missing favorite is 404, everything else is an opaque
// 500 plus a server-side log line.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Error()})
	case errors.Is(err, favorites.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": favorites.ErrNotFound.Error()})
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
