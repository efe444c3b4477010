package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/stormhaven/stormhaven/internal/adapter/http"
	"github.com/stormhaven/stormhaven/internal/domain"
	"github.com/stormhaven/stormhaven/internal/favorites"
	"github.com/stormhaven/stormhaven/internal/observability"
)

// stubStore returns canned rows and records the filters it was handed.
type stubStore struct {
	properties []domain.Property
	disasters  []domain.Disaster
	trends     []domain.DisasterTrend
	err        error
	pingErr    error

	gotPropertyFilter domain.PropertyFilter
	gotPropertyID     *int64
}

func (s *stubStore) SearchProperties(_ context.Context, f domain.PropertyFilter) ([]domain.Property, error) {
	s.gotPropertyFilter = f
	return s.properties, s.err
}

func (s *stubStore) SearchDisasters(_ context.Context, _ domain.DisasterFilter) ([]domain.Disaster, error) {
	return s.disasters, s.err
}

func (s *stubStore) DisastersForProperty(_ context.Context, id *int64) ([]domain.PropertyDisaster, error) {
	s.gotPropertyID = id
	return []domain.PropertyDisaster{}, s.err
}

func (s *stubStore) FrequentDisasterHighPrice(context.Context) ([]domain.DisasterTypeCount, error) {
	return []domain.DisasterTypeCount{}, s.err
}

func (s *stubStore) RecentlyUnimpactedHighRisk(context.Context) ([]domain.UnimpactedProperty, error) {
	return []domain.UnimpactedProperty{}, s.err
}

func (s *stubStore) SafestCitiesPerState(context.Context) ([]domain.CitySafety, error) {
	return []domain.CitySafety{}, s.err
}

func (s *stubStore) PropertiesWithSignificantDisasters(context.Context) ([]domain.CityPriceStats, error) {
	return []domain.CityPriceStats{}, s.err
}

func (s *stubStore) MostAffectedProperties(context.Context) ([]domain.AffectedLocation, error) {
	return []domain.AffectedLocation{}, s.err
}

func (s *stubStore) AffectedPastTwoYears(context.Context) ([]domain.AffectedProperty, error) {
	return []domain.AffectedProperty{}, s.err
}

func (s *stubStore) DisasterTrends(context.Context) ([]domain.DisasterTrend, error) {
	if s.trends == nil {
		return []domain.DisasterTrend{}, s.err
	}
	return s.trends, s.err
}

func (s *stubStore) Ping(context.Context) error { return s.pingErr }

func newTestServer(t *testing.T, store *stubStore) *httpadapter.Server {
	t.Helper()
	favs, err := favorites.New(context.Background(), favorites.NewMemoryStorage())
	require.NoError(t, err)
	logger := observability.NewLogger(io.Discard, "error", "text")
	return httpadapter.NewServer(httpadapter.Config{Addr: ":0"}, store, favs, observability.NewMetricsForTesting(), logger)
}

func doRequest(srv *httpadapter.Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubStore{})
	rec := doRequest(srv, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyz(t *testing.T) {
	srv := newTestServer(t, &stubStore{})
	assert.Equal(t, http.StatusOK, doRequest(srv, http.MethodGet, "/readyz", nil).Code)

	down := newTestServer(t, &stubStore{pingErr: errors.New("db gone")})
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(down, http.MethodGet, "/readyz", nil).Code)
}

func TestSearchProperties_ReturnsRows(t *testing.T) {
	store := &stubStore{properties: []domain.Property{
		{PropertyID: 101, CountyName: "Springfield", State: "CA", Price: 750000, Status: domain.StatusForSale, Bedrooms: 3, Bathrooms: 2, AcreLot: 0.5},
	}}
	srv := newTestServer(t, store)

	rec := doRequest(srv, http.MethodGet, "/search_properties?state=CA&price_low=500000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, float64(101), rows[0]["property_id"])
	assert.Equal(t, "for_sale", rows[0]["status"])

	// The compiled filter reached the store with the state constraint.
	found := false
	for _, c := range store.gotPropertyFilter.Conditions {
		if c.Column == "state" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSearchProperties_InvalidNumberIs400(t *testing.T) {
	srv := newTestServer(t, &stubStore{})
	rec := doRequest(srv, http.MethodGet, "/search_properties?price_low=abc", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "price_low")
}

func TestSearchProperties_StoreFailureIs500(t *testing.T) {
	srv := newTestServer(t, &stubStore{err: errors.New("disk on fire")})
	rec := doRequest(srv, http.MethodGet, "/search_properties", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	// Internal detail never leaks to the client.
	assert.Equal(t, "internal error", body["error"])
}

func TestSearchDisasters_InvalidDateIs400(t *testing.T) {
	srv := newTestServer(t, &stubStore{})
	rec := doRequest(srv, http.MethodGet, "/search_disasters?designateddate_low=notadate", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDisastersForProperty_ParsesID(t *testing.T) {
	store := &stubStore{}
	srv := newTestServer(t, store)

	rec := doRequest(srv, http.MethodGet, "/get_disasters_for_property?property_id=42", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, store.gotPropertyID)
	assert.Equal(t, int64(42), *store.gotPropertyID)

	rec = doRequest(srv, http.MethodGet, "/get_disasters_for_property", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, store.gotPropertyID)

	rec = doRequest(srv, http.MethodGet, "/get_disasters_for_property?property_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsRoutes_EmptyIsJSONArray(t *testing.T) {
	srv := newTestServer(t, &stubStore{})
	for _, route := range []string{
		"/frequent-disaster-high-price-properties",
		"/recently-unimpacted-high-risk-areas",
		"/safest-cities-per-state",
		"/properties-with-significant-disasters",
		"/most-affected-properties",
		"/affected-properties-past-two-years",
		"/disaster-trends",
	} {
		rec := doRequest(srv, http.MethodGet, route, nil)
		require.Equal(t, http.StatusOK, rec.Code, route)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()), route)
	}
}

func TestDisasterTrends_ReturnsRows(t *testing.T) {
	srv := newTestServer(t, &stubStore{trends: []domain.DisasterTrend{
		{Index: 1, Year: 2024, TypeDescription: "Fire Management", DisasterCount: 3},
	}})

	rec := doRequest(srv, http.MethodGet, "/disaster-trends", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []domain.DisasterTrend
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 2024, rows[0].Year)
}

func TestFavoritesLifecycle(t *testing.T) {
	srv := newTestServer(t, &stubStore{})

	rec := doRequest(srv, http.MethodPost, "/favorites", strings.NewReader(`{"property_id": 7}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/favorites", strings.NewReader(`{"property_id": 3}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodPut, "/favorites/7/note", strings.NewReader(`{"note": "flood zone"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/favorites", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var favs []favorites.Favorite
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &favs))
	require.Len(t, favs, 2)
	assert.Equal(t, int64(3), favs[0].PropertyID)
	assert.Equal(t, "flood zone", favs[1].Note)

	rec = doRequest(srv, http.MethodDelete, "/favorites/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var after []favorites.Favorite
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	require.Len(t, after, 1)
	assert.Equal(t, int64(7), after[0].PropertyID)
}

func TestFavorites_Errors(t *testing.T) {
	srv := newTestServer(t, &stubStore{})

	assert.Equal(t, http.StatusBadRequest, doRequest(srv, http.MethodPost, "/favorites", strings.NewReader(`{}`)).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(srv, http.MethodPost, "/favorites", strings.NewReader(`not json`)).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(srv, http.MethodDelete, "/favorites/99", nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(srv, http.MethodPut, "/favorites/99/note", strings.NewReader(`{"note":"x"}`)).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(srv, http.MethodDelete, "/favorites/abc", nil).Code)
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, &stubStore{})

	rec := doRequest(srv, http.MethodGet, "/healthz", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubStore{})
	rec := doRequest(srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	// Default registry content; the shape is all this test pins down.
	assert.NotEmpty(t, rec.Body.String())
}
