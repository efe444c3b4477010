package domain

import "time"

// Analytics row shapes. Index columns are a 1-based sequence over the already
// ordered result set; they exist so grid clients have a stable row key and
// carry no meaning beyond that.

// DisasterTypeCount is one row of the frequent-disaster-high-price view:
// disaster type frequency across locations whose average listing price
// exceeds $500,000.
type DisasterTypeCount struct {
	TypeCode string `json:"type_code"`
	Count    int64  `json:"count"`
}

// UnimpactedProperty is a property with no disaster in the past five years
// that sits in a historically high-risk area.
type UnimpactedProperty struct {
	PropertyID int64  `json:"property_id"`
	City       string `json:"city"`
	State      string `json:"state"`
}

// CitySafety is a city with fewer disasters than its state's per-city average.
type CitySafety struct {
	Index         int64  `json:"index"`
	City          string `json:"city"`
	State         string `json:"state"`
	DisasterCount int64  `json:"disaster_count"`
}

// CityPriceStats is average pricing for a city hit by at least two distinct
// disaster types.
type CityPriceStats struct {
	Index    int64   `json:"index"`
	City     string  `json:"city"`
	State    string  `json:"state"`
	AvgPrice float64 `json:"avg_price"`
}

// AffectedLocation is a location ranked by how many of its properties have
// disaster history.
type AffectedLocation struct {
	City                  string `json:"city"`
	State                 string `json:"state"`
	CountyName            string `json:"county_name"`
	AffectedPropertyCount int64  `json:"affected_property_count"`
}

// AffectedProperty is a property touched by a disaster within the past two
// years.
type AffectedProperty struct {
	PropertyID     int64     `json:"property_id"`
	Price          float64   `json:"price"`
	Status         string    `json:"status"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	DesignatedDate time.Time `json:"designateddate"`
}

// DisasterTrend is one (year, type) bucket of declaration counts.
type DisasterTrend struct {
	Index           int64  `json:"index"`
	Year            int    `json:"year"`
	TypeDescription string `json:"type_description"`
	DisasterCount   int64  `json:"disaster_count"`
}
