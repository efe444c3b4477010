package duckdb

import (
	"context"
	"fmt"
	"time"

	"github.com/stormhaven/stormhaven/internal/domain"
)

// The analytics catalog. Four operations read the fixed views created in
// schema.go; the time-relative ones take their cutoff from the injected
// clock instead of SQL NOW() so results are reproducible under test.

// Disaster-trend rows stop at this year; later declarations are still being
// amended upstream and would skew the per-year counts.
const trendsMaxYear = 2024

// AffectedPastTwoYears is the only analytics result with its own cap.
const affectedPropertiesCap = 100

// FrequentDisasterHighPrice reports disaster type frequency across locations
// whose average listing price exceeds $500,000.
func (s *Store) FrequentDisasterHighPrice(ctx context.Context) (_ []domain.DisasterTypeCount, err error) {
	start := time.Now()
	defer func() { s.observe("frequent_disaster_high_price", start, err) }()

	rows, err := s.db.QueryContext(ctx, `SELECT type_code, cnt FROM view_frequent_disaster_high_price`)
	if err != nil {
		return nil, fmt.Errorf("frequent disaster high price: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DisasterTypeCount, 0)
	for rows.Next() {
		var r domain.DisasterTypeCount
		if err := rows.Scan(&r.TypeCode, &r.Count); err != nil {
			return nil, fmt.Errorf("scan type count row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentlyUnimpactedHighRisk lists properties with no disaster in the past
// five years that sit in a city with hazard-mitigation ("HM") history.
func (s *Store) RecentlyUnimpactedHighRisk(ctx context.Context) (_ []domain.UnimpactedProperty, err error) {
	start := time.Now()
	defer func() { s.observe("recently_unimpacted_high_risk", start, err) }()

	cutoff := s.clock.Now().UTC().AddDate(-5, 0, 0)
	rows, err := s.db.QueryContext(ctx, `
	SELECT DISTINCT p.property_id, l.city, l.state
	FROM property p
	JOIN located l ON p.property_id = l.property_id
	WHERE l.city IN (
		SELECT l2.city
		FROM located l2
		JOIN disaster_types dt ON l2.disaster_id = dt.disaster_id
		WHERE dt.type_code = 'HM'
	)
	AND p.property_id NOT IN (
		SELECT l3.property_id
		FROM located l3
		JOIN disaster d ON l3.disaster_id = d.disaster_id
		WHERE d.designateddate >= ?
	)
	ORDER BY p.property_id ASC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("recently unimpacted high risk: %w", err)
	}
	defer rows.Close()

	out := make([]domain.UnimpactedProperty, 0)
	for rows.Next() {
		var r domain.UnimpactedProperty
		if err := rows.Scan(&r.PropertyID, &r.City, &r.State); err != nil {
			return nil, fmt.Errorf("scan unimpacted row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SafestCitiesPerState lists cities with fewer disasters than the per-city
// average of their state.
func (s *Store) SafestCitiesPerState(ctx context.Context) (_ []domain.CitySafety, err error) {
	start := time.Now()
	defer func() { s.observe("safest_cities_per_state", start, err) }()

	rows, err := s.db.QueryContext(ctx, `SELECT idx, city, state, disaster_count FROM view_safest_cities_per_state`)
	if err != nil {
		return nil, fmt.Errorf("safest cities per state: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CitySafety, 0)
	for rows.Next() {
		var r domain.CitySafety
		if err := rows.Scan(&r.Index, &r.City, &r.State, &r.DisasterCount); err != nil {
			return nil, fmt.Errorf("scan city safety row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PropertiesWithSignificantDisasters reports average pricing for cities hit
// by at least two distinct disaster types.
func (s *Store) PropertiesWithSignificantDisasters(ctx context.Context) (_ []domain.CityPriceStats, err error) {
	start := time.Now()
	defer func() { s.observe("properties_with_significant_disasters", start, err) }()

	rows, err := s.db.QueryContext(ctx, `SELECT idx, city, state, avg_price FROM view_properties_with_significant_disaster_type`)
	if err != nil {
		return nil, fmt.Errorf("properties with significant disasters: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CityPriceStats, 0)
	for rows.Next() {
		var r domain.CityPriceStats
		if err := rows.Scan(&r.Index, &r.City, &r.State, &r.AvgPrice); err != nil {
			return nil, fmt.Errorf("scan city price row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MostAffectedProperties ranks locations by distinct affected properties,
// most affected first, top 20.
func (s *Store) MostAffectedProperties(ctx context.Context) (_ []domain.AffectedLocation, err error) {
	start := time.Now()
	defer func() { s.observe("most_affected_properties", start, err) }()

	rows, err := s.db.QueryContext(ctx, `SELECT city, state, county_name, affected_property_count FROM mv_affected_properties`)
	if err != nil {
		return nil, fmt.Errorf("most affected properties: %w", err)
	}
	defer rows.Close()

	out := make([]domain.AffectedLocation, 0)
	for rows.Next() {
		var r domain.AffectedLocation
		if err := rows.Scan(&r.City, &r.State, &r.CountyName, &r.AffectedPropertyCount); err != nil {
			return nil, fmt.Errorf("scan affected location row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AffectedPastTwoYears lists properties touched by a disaster within the
// past two years, newest declaration first, capped at 100 rows.
func (s *Store) AffectedPastTwoYears(ctx context.Context) (_ []domain.AffectedProperty, err error) {
	start := time.Now()
	defer func() { s.observe("affected_past_two_years", start, err) }()

	cutoff := s.clock.Now().UTC().AddDate(-2, 0, 0)
	rows, err := s.db.QueryContext(ctx, `
	SELECT DISTINCT p.property_id, p.price, p.status, l.city, l.state, d.designateddate
	FROM property p
	JOIN located l ON p.property_id = l.property_id
	JOIN disaster d ON l.disaster_id = d.disaster_id
	WHERE d.designateddate >= ?
	ORDER BY d.designateddate DESC, p.property_id ASC
	LIMIT ?`, cutoff, affectedPropertiesCap)
	if err != nil {
		return nil, fmt.Errorf("affected past two years: %w", err)
	}
	defer rows.Close()

	out := make([]domain.AffectedProperty, 0)
	for rows.Next() {
		var r domain.AffectedProperty
		if err := rows.Scan(&r.PropertyID, &r.Price, &r.Status, &r.City, &r.State, &r.DesignatedDate); err != nil {
			return nil, fmt.Errorf("scan affected property row: %w", err)
		}
		r.DesignatedDate = r.DesignatedDate.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// DisasterTrends buckets declaration counts by year and type description,
// most recent year first, highest count first within a year.
func (s *Store) DisasterTrends(ctx context.Context) (_ []domain.DisasterTrend, err error) {
	start := time.Now()
	defer func() { s.observe("disaster_trends", start, err) }()

	rows, err := s.db.QueryContext(ctx, `
	SELECT
		row_number() OVER (ORDER BY year DESC, disaster_count DESC, type_description ASC) AS idx,
		year, type_description, disaster_count
	FROM (
		SELECT
			CAST(EXTRACT(YEAR FROM d.designateddate) AS INTEGER) AS year,
			dt.type_description,
			COUNT(d.disaster_id) AS disaster_count
		FROM disaster d
		JOIN disaster_types dt ON d.disaster_id = dt.disaster_id
		WHERE EXTRACT(YEAR FROM d.designateddate) <= ?
		GROUP BY year, dt.type_description
	)
	ORDER BY year DESC, disaster_count DESC, type_description ASC`, trendsMaxYear)
	if err != nil {
		return nil, fmt.Errorf("disaster trends: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DisasterTrend, 0)
	for rows.Next() {
		var r domain.DisasterTrend
		if err := rows.Scan(&r.Index, &r.Year, &r.TypeDescription, &r.DisasterCount); err != nil {
			return nil, fmt.Errorf("scan trend row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
