package duckdb

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/stormhaven/stormhaven/internal/domain"
	"github.com/stormhaven/stormhaven/internal/observability"
)

// testNow is the frozen clock for every store test, so the relative-window
// analytics are deterministic.
var testNow = time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	logger := observability.NewLogger(io.Discard, "error", "text")
	s, err := Open(context.Background(), "", clockwork.NewFakeClockAt(testNow), logger, observability.NewMetricsForTesting())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ts(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tsPtr(y int, m time.Month, d int) *time.Time {
	t := ts(y, m, d)
	return &t
}

var fixtureProperties = []domain.Property{
	{PropertyID: 101, CountyName: "Springfield", State: "CA", Price: 750000, Status: domain.StatusForSale, Bedrooms: 3, Bathrooms: 2, AcreLot: 0.5},
	{PropertyID: 102, CountyName: "Springfield", State: "CA", Price: 450000, Status: domain.StatusSold, Bedrooms: 2, Bathrooms: 1, AcreLot: 0.25},
	{PropertyID: 103, CountyName: "Shelbyville", State: "CA", Price: 300000, Status: domain.StatusForSale, Bedrooms: 4, Bathrooms: 2.5, AcreLot: 1},
	{PropertyID: 104, CountyName: "Ogdenville", State: "TX", Price: 900000, Status: domain.StatusForSale, Bedrooms: 5, Bathrooms: 3, AcreLot: 2},
	{PropertyID: 105, CountyName: "Ogdenville", State: "TX", Price: 820000, Status: domain.StatusSold, Bedrooms: 3, Bathrooms: 2, AcreLot: 1.5},
}

var fixtureDeclarations = []domain.Declaration{
	{
		DisasterID: 5001, DisasterNumber: 9001, CountyName: "Springfield", State: "CA",
		DesignatedDate: ts(2020, time.June, 15), CloseoutDate: tsPtr(2020, time.December, 1),
		Types: []domain.DeclarationType{{TypeCode: "FM", TypeDescription: "Fire Management"}},
	},
	{
		DisasterID: 5002, DisasterNumber: 9002, CountyName: "Springfield", State: "CA",
		DesignatedDate: ts(2023, time.August, 1),
		Types: []domain.DeclarationType{
			{TypeCode: "HM", TypeDescription: "Hazard Mitigation"},
			{TypeCode: "PA", TypeDescription: "Public Assistance"},
		},
	},
	{
		DisasterID: 5003, DisasterNumber: 9003, CountyName: "Ogdenville", State: "TX",
		DesignatedDate: ts(2024, time.March, 10),
		Types:          []domain.DeclarationType{{TypeCode: "FM", TypeDescription: "Fire Management"}},
	},
	{
		DisasterID: 5004, DisasterNumber: 9004, CountyName: "Shelbyville", State: "CA",
		DesignatedDate: ts(2015, time.May, 20), CloseoutDate: tsPtr(2016, time.January, 1),
		Types:          []domain.DeclarationType{{TypeCode: "HM", TypeDescription: "Hazard Mitigation"}},
	},
	// A county with no properties; exercises year filtering without touching
	// the located join.
	{
		DisasterID: 5005, DisasterNumber: 9005, CountyName: "North Haverbrook", State: "OR",
		DesignatedDate: ts(2026, time.February, 1),
		Types:          []domain.DeclarationType{{TypeCode: "SS", TypeDescription: "Severe Storm"}},
	},
}

func seedFixture(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.ImportProperties(ctx, fixtureProperties))
	require.NoError(t, s.UpsertDeclarations(ctx, fixtureDeclarations))
	_, err := s.RebuildLocated(ctx)
	require.NoError(t, err)
}

func TestOpen_CreatesSchema(t *testing.T) {
	s := openTestStore(t)

	counts, err := s.TableCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 5)
	for table, n := range counts {
		require.Zero(t, n, "table %s should start empty", table)
	}
}

func TestPing(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Ping(context.Background()))
}
