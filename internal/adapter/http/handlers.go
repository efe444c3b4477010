package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/stormhaven/stormhaven/internal/domain"
)

func (s *Server) handleSearchProperties(w http.ResponseWriter, r *http.Request) {
	filter, err := domain.ParsePropertyFilter(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, err := s.store.SearchProperties(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleSearchDisasters(w http.ResponseWriter, r *http.Request) {
	filter, err := domain.ParseDisasterFilter(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, err := s.store.SearchDisasters(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleDisastersForProperty(w http.ResponseWriter, r *http.Request) {
	var propertyID *int64
	if v := strings.TrimSpace(r.URL.Query().Get("property_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.writeError(w, r, &domain.ValidationError{Field: "property_id", Value: v})
			return
		}
		propertyID = &id
	}
	rows, err := s.store.DisastersForProperty(r.Context(), propertyID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// analyticsHandler adapts one parameterless store query into a handler.
func analyticsHandler[T any](s *Server, op func(Store, context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := op(s.store, r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}
