package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MaxSearchRows caps every search-style result set.
const MaxSearchRows = 1000

// Default range bounds applied when a range parameter is absent or empty.
// Wide enough to be effectively unconstrained, so a defaulted range still
// means "match all".
const (
	DefaultPriceLow     = 0
	DefaultPriceHigh    = 10_000_000_000
	DefaultBathroomsLow = 0
	DefaultBathroomsHi  = 100
	DefaultBedroomsLow  = 0
	DefaultBedroomsHigh = 1000
	DefaultAcresLow     = 0
	DefaultAcresHigh    = 10000
)

// Date bounds used when no designated-date range is supplied.
var (
	DateFloor = time.Date(1000, time.January, 1, 0, 0, 0, 0, time.UTC)
	DateCeil  = time.Date(3000, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// ValidationError reports a query parameter that could not be parsed for its
// declared type. It maps to HTTP 400 at the boundary.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %q for parameter %q", e.Value, e.Field)
}

// Predicate is one bounded constraint on a single column. An unconstrained
// field has no predicate at all: it simply never enters the conjunction.
type Predicate interface {
	isPredicate()
}

// Exact matches a column equal to Value.
type Exact struct {
	Value any
}

// Substring matches a column containing Value, case-insensitively.
type Substring struct {
	Value string
}

// Range matches Lo <= column <= Hi, both ends inclusive.
type Range struct {
	Lo any
	Hi any
}

func (Exact) isPredicate()     {}
func (Substring) isPredicate() {}
func (Range) isPredicate()     {}

// Condition binds a predicate to a logical column name. The storage adapter
// maps logical names to qualified SQL columns and lowers the predicate to
// parameter-bound query text; user input never reaches query text directly.
type Condition struct {
	Column string
	Pred   Predicate
}

// PropertyFilter is the compiled conjunction for a property search.
type PropertyFilter struct {
	Conditions []Condition
}

// DisasterFilter is the compiled conjunction for a disaster search.
type DisasterFilter struct {
	Conditions []Condition
}

// ParsePropertyFilter compiles /search_properties query parameters into a
// predicate conjunction. Identifier and text filters are emitted only when
// the parameter is present and non-empty; numeric ranges are always emitted,
// defaulted when absent.
func ParsePropertyFilter(q url.Values) (PropertyFilter, error) {
	var f PropertyFilter

	id, err := optionalInt64(q, "property_id")
	if err != nil {
		return PropertyFilter{}, err
	}
	if id != nil {
		f.Conditions = append(f.Conditions, Condition{Column: "property_id", Pred: Exact{Value: *id}})
	}

	for _, p := range []struct{ param, column string }{
		{"state", "state"},
		{"county_name", "county_name"},
		{"status", "status"},
	} {
		if v := strings.TrimSpace(q.Get(p.param)); v != "" {
			f.Conditions = append(f.Conditions, Condition{Column: p.column, Pred: Substring{Value: v}})
		}
	}

	for _, r := range []struct {
		lowParam, highParam, column string
		defLo, defHi                float64
	}{
		{"price_low", "price_high", "price", DefaultPriceLow, DefaultPriceHigh},
		{"bathrooms_low", "bathrooms_high", "bathrooms", DefaultBathroomsLow, DefaultBathroomsHi},
		{"bedrooms_low", "bedrooms_high", "bedrooms", DefaultBedroomsLow, DefaultBedroomsHigh},
		{"acres_low", "acres_high", "acre_lot", DefaultAcresLow, DefaultAcresHigh},
	} {
		lo, err := optionalFloat(q, r.lowParam, r.defLo)
		if err != nil {
			return PropertyFilter{}, err
		}
		hi, err := optionalFloat(q, r.highParam, r.defHi)
		if err != nil {
			return PropertyFilter{}, err
		}
		f.Conditions = append(f.Conditions, Condition{Column: r.column, Pred: Range{Lo: lo, Hi: hi}})
	}

	return f, nil
}

// ParseDisasterFilter compiles /search_disasters query parameters into a
// predicate conjunction. Date bounds accept full timestamps or bare dates;
// a bare date widens to start-of-day on the low bound and end-of-day on the
// high bound so day-granularity pickers behave inclusively.
func ParseDisasterFilter(q url.Values) (DisasterFilter, error) {
	var f DisasterFilter

	for _, p := range []struct{ param, column string }{
		{"disaster_id", "disaster_id"},
		{"disasternumber", "disasternumber"},
	} {
		id, err := optionalInt64(q, p.param)
		if err != nil {
			return DisasterFilter{}, err
		}
		if id != nil {
			f.Conditions = append(f.Conditions, Condition{Column: p.column, Pred: Exact{Value: *id}})
		}
	}

	if v := strings.TrimSpace(q.Get("type_code")); v != "" {
		f.Conditions = append(f.Conditions, Condition{Column: "type_code", Pred: Exact{Value: v}})
	}
	if v := strings.TrimSpace(q.Get("county_name")); v != "" {
		f.Conditions = append(f.Conditions, Condition{Column: "county_name", Pred: Substring{Value: v}})
	}

	lo, err := dateBound(q, "designateddate_low", DateFloor, false)
	if err != nil {
		return DisasterFilter{}, err
	}
	hi, err := dateBound(q, "designateddate_high", DateCeil, true)
	if err != nil {
		return DisasterFilter{}, err
	}
	f.Conditions = append(f.Conditions, Condition{Column: "designateddate", Pred: Range{Lo: lo, Hi: hi}})

	return f, nil
}

// optionalInt64 parses an identifier parameter. Absent or empty means
// unconstrained (nil); anything non-numeric is a validation error.
func optionalInt64(q url.Values, name string) (*int64, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, &ValidationError{Field: name, Value: v}
	}
	return &n, nil
}

// optionalFloat parses a numeric range bound, substituting def when the
// parameter is absent or empty.
func optionalFloat(q url.Values, name string, def float64) (float64, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &ValidationError{Field: name, Value: v}
	}
	return n, nil
}

// dateBoundLayouts are tried in order when parsing a date parameter.
var dateBoundLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

const dateOnlyLayout = "2006-01-02"

// dateBound parses a date-time parameter, substituting def when absent. Bare
// dates widen to 00:00:00 (low bounds) or 23:59:59 (high bounds).
func dateBound(q url.Values, name string, def time.Time, endOfDay bool) (time.Time, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return def, nil
	}
	for _, layout := range dateBoundLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	if t, err := time.Parse(dateOnlyLayout, v); err == nil {
		if endOfDay {
			return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC), nil
		}
		return t.UTC(), nil
	}
	return time.Time{}, &ValidationError{Field: name, Value: v}
}
