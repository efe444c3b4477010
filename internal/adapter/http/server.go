// Package http exposes the search, analytics, and favorites API plus the
// operational endpoints (/healthz, /readyz, /metrics).
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stormhaven/stormhaven/internal/domain"
	"github.com/stormhaven/stormhaven/internal/favorites"
	"github.com/stormhaven/stormhaven/internal/observability"
)

// Store is the read surface the handlers need from the storage layer.
type Store interface {
	SearchProperties(ctx context.Context, f domain.PropertyFilter) ([]domain.Property, error)
	SearchDisasters(ctx context.Context, f domain.DisasterFilter) ([]domain.Disaster, error)
	DisastersForProperty(ctx context.Context, propertyID *int64) ([]domain.PropertyDisaster, error)

	FrequentDisasterHighPrice(ctx context.Context) ([]domain.DisasterTypeCount, error)
	RecentlyUnimpactedHighRisk(ctx context.Context) ([]domain.UnimpactedProperty, error)
	SafestCitiesPerState(ctx context.Context) ([]domain.CitySafety, error)
	PropertiesWithSignificantDisasters(ctx context.Context) ([]domain.CityPriceStats, error)
	MostAffectedProperties(ctx context.Context) ([]domain.AffectedLocation, error)
	AffectedPastTwoYears(ctx context.Context) ([]domain.AffectedProperty, error)
	DisasterTrends(ctx context.Context) ([]domain.DisasterTrend, error)

	Ping(ctx context.Context) error
}

// Favorites is the mutation surface of the favorites store.
type Favorites interface {
	Add(ctx context.Context, propertyID int64) ([]favorites.Favorite, error)
	Remove(ctx context.Context, propertyID int64) ([]favorites.Favorite, error)
	UpdateNote(ctx context.Context, propertyID int64, note string) ([]favorites.Favorite, error)
	List() []favorites.Favorite
}

// Config holds the server's listen address and throttling knobs.
type Config struct {
	Addr            string
	RateLimitPerMin int
}

// Server is the API HTTP server.
type Server struct {
	httpServer *http.Server
	store      Store
	favorites  Favorites
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer wires the router: open CORS, per-IP rate limiting, request id,
// request logging, panic recovery, and Prometheus instrumentation.
func NewServer(cfg Config, store Store, favs Favorites, metrics *observability.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		store:     store,
		favorites: favs,
		metrics:   metrics,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	if cfg.RateLimitPerMin > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute))
	}

	r.Get("/search_properties", s.handleSearchProperties)
	r.Get("/search_disasters", s.handleSearchDisasters)
	r.Get("/get_disasters_for_property", s.handleDisastersForProperty)

	r.Get("/frequent-disaster-high-price-properties", analyticsHandler(s, Store.FrequentDisasterHighPrice))
	r.Get("/recently-unimpacted-high-risk-areas", analyticsHandler(s, Store.RecentlyUnimpactedHighRisk))
	r.Get("/safest-cities-per-state", analyticsHandler(s, Store.SafestCitiesPerState))
	r.Get("/properties-with-significant-disasters", analyticsHandler(s, Store.PropertiesWithSignificantDisasters))
	r.Get("/most-affected-properties", analyticsHandler(s, Store.MostAffectedProperties))
	r.Get("/affected-properties-past-two-years", analyticsHandler(s, Store.AffectedPastTwoYears))
	r.Get("/disaster-trends", analyticsHandler(s, Store.DisasterTrends))

	r.Route("/favorites", func(r chi.Router) {
		r.Get("/", s.handleListFavorites)
		r.Post("/", s.handleAddFavorite)
		r.Put("/{property_id}/note", s.handleUpdateFavoriteNote)
		r.Delete("/{property_id}", s.handleRemoveFavorite)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
