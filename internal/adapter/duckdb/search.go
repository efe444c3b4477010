package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/stormhaven/stormhaven/internal/domain"
)

// Column maps from logical filter names to qualified SQL columns. Filter
// input only ever selects a column through these maps; values travel as bind
// parameters, so no user input reaches query text.
var (
	propertyColumns = map[string]string{
		"property_id": "p.property_id",
		"county_name": "p.county_name",
		"state":       "p.state",
		"status":      "p.status",
		"price":       "p.price",
		"bedrooms":    "f.bedrooms",
		"bathrooms":   "f.bathrooms",
		"acre_lot":    "f.acre_lot",
	}
	disasterColumns = map[string]string{
		"disaster_id":    "d.disaster_id",
		"disasternumber": "d.disasternumber",
		"county_name":    "d.county_name",
		"designateddate": "d.designateddate",
		"type_code":      "dt.type_code",
	}
)

// lowerConditions turns a predicate conjunction into " AND ..." SQL fragments
// plus their bind arguments.
func lowerConditions(conds []domain.Condition, columns map[string]string) (string, []any, error) {
	var sb strings.Builder
	var args []any
	for _, c := range conds {
		col, ok := columns[c.Column]
		if !ok {
			return "", nil, fmt.Errorf("filter column %q has no SQL mapping", c.Column)
		}
		switch p := c.Pred.(type) {
		case domain.Exact:
			sb.WriteString(" AND " + col + " = ?")
			args = append(args, p.Value)
		case domain.Substring:
			sb.WriteString(" AND " + col + " ILIKE ?")
			args = append(args, "%"+p.Value+"%")
		case domain.Range:
			sb.WriteString(" AND " + col + " BETWEEN ? AND ?")
			args = append(args, p.Lo, p.Hi)
		default:
			return "", nil, fmt.Errorf("unsupported predicate %T on column %q", c.Pred, c.Column)
		}
	}
	return sb.String(), args, nil
}

// SearchProperties returns Property×Features rows matching the filter,
// ordered by property id, capped at domain.MaxSearchRows.
func (s *Store) SearchProperties(ctx context.Context, f domain.PropertyFilter) (_ []domain.Property, err error) {
	start := time.Now()
	defer func() { s.observe("search_properties", start, err) }()

	where, args, err := lowerConditions(f.Conditions, propertyColumns)
	if err != nil {
		return nil, err
	}
	query := `
	SELECT p.property_id, p.county_name, p.state, p.price, p.status,
	       f.bedrooms, f.bathrooms, f.acre_lot
	FROM property p
	JOIN features f ON p.property_id = f.property_id
	WHERE 1=1` + where + `
	ORDER BY p.property_id ASC
	LIMIT ?`
	args = append(args, domain.MaxSearchRows)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search properties: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Property, 0)
	for rows.Next() {
		var p domain.Property
		if err := rows.Scan(&p.PropertyID, &p.CountyName, &p.State, &p.Price, &p.Status,
			&p.Bedrooms, &p.Bathrooms, &p.AcreLot); err != nil {
			return nil, fmt.Errorf("scan property row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SearchDisasters returns Disaster×DisasterType rows matching the filter,
// ordered by disaster number, capped at domain.MaxSearchRows.
func (s *Store) SearchDisasters(ctx context.Context, f domain.DisasterFilter) (_ []domain.Disaster, err error) {
	start := time.Now()
	defer func() { s.observe("search_disasters", start, err) }()

	where, args, err := lowerConditions(f.Conditions, disasterColumns)
	if err != nil {
		return nil, err
	}
	query := `
	SELECT d.disaster_id, d.disasternumber, d.county_name, d.designateddate,
	       d.closeoutdate, dt.type_code, dt.type_description
	FROM disaster d
	JOIN disaster_types dt ON d.disaster_id = dt.disaster_id
	WHERE 1=1` + where + `
	ORDER BY d.disasternumber ASC, d.disaster_id ASC, dt.type_code ASC
	LIMIT ?`
	args = append(args, domain.MaxSearchRows)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search disasters: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Disaster, 0)
	for rows.Next() {
		var d domain.Disaster
		var closeout sql.NullTime
		if err := rows.Scan(&d.DisasterID, &d.DisasterNumber, &d.CountyName, &d.DesignatedDate,
			&closeout, &d.TypeCode, &d.TypeDescription); err != nil {
			return nil, fmt.Errorf("scan disaster row: %w", err)
		}
		d.DesignatedDate = d.DesignatedDate.UTC()
		d.CloseoutDate = nullableTime(closeout)
		out = append(out, d)
	}
	return out, rows.Err()
}

// DisastersForProperty returns the distinct disasters whose county name
// matches the property's, newest first, capped at domain.MaxSearchRows.
// A nil propertyID is unconstrained and matches every property, mirroring
// the search endpoints' empty-means-all rule.
func (s *Store) DisastersForProperty(ctx context.Context, propertyID *int64) (_ []domain.PropertyDisaster, err error) {
	start := time.Now()
	defer func() { s.observe("disasters_for_property", start, err) }()

	query := `
	SELECT DISTINCT d.disaster_id, d.disasternumber, d.designateddate, d.closeoutdate,
	       dt.type_code, dt.type_description
	FROM property p
	JOIN disaster d ON p.county_name = d.county_name
	JOIN disaster_types dt ON d.disaster_id = dt.disaster_id
	WHERE 1=1`
	var args []any
	if propertyID != nil {
		query += " AND p.property_id = ?"
		args = append(args, *propertyID)
	}
	query += `
	ORDER BY d.designateddate DESC, d.disaster_id ASC, dt.type_code ASC
	LIMIT ?`
	args = append(args, domain.MaxSearchRows)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("disasters for property: %w", err)
	}
	defer rows.Close()

	out := make([]domain.PropertyDisaster, 0)
	for rows.Next() {
		var d domain.PropertyDisaster
		var closeout sql.NullTime
		if err := rows.Scan(&d.DisasterID, &d.DisasterNumber, &d.DesignatedDate, &closeout,
			&d.TypeCode, &d.TypeDescription); err != nil {
			return nil, fmt.Errorf("scan property disaster row: %w", err)
		}
		d.DesignatedDate = d.DesignatedDate.UTC()
		d.CloseoutDate = nullableTime(closeout)
		out = append(out, d)
	}
	return out, rows.Err()
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}
