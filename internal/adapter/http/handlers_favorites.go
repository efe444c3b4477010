package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/stormhaven/stormhaven/internal/domain"
)

type addFavoriteRequest struct {
	PropertyID int64 `json:"property_id"`
}

type updateNoteRequest struct {
	Note string `json:"note"`
}

func (s *Server) handleListFavorites(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.favorites.List())
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var req addFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PropertyID <= 0 {
		s.writeError(w, r, &domain.ValidationError{Field: "property_id", Value: "body"})
		return
	}
	snapshot, err := s.favorites.Add(r.Context(), req.PropertyID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.FavoriteOps.WithLabelValues("add").Inc()
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := s.favoritePathID(w, r)
	if !ok {
		return
	}
	snapshot, err := s.favorites.Remove(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.FavoriteOps.WithLabelValues("remove").Inc()
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleUpdateFavoriteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := s.favoritePathID(w, r)
	if !ok {
		return
	}
	var req updateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, &domain.ValidationError{Field: "note", Value: "body"})
		return
	}
	snapshot, err := s.favorites.UpdateNote(r.Context(), id, req.Note)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.FavoriteOps.WithLabelValues("update_note").Inc()
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) favoritePathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "property_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, &domain.ValidationError{Field: "property_id", Value: raw})
		return 0, false
	}
	return id, true
}
