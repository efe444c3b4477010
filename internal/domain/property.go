package domain

// Property statuses as stored. Display layers replace the underscore with a
// space; the API returns the stored form untouched.
const (
	StatusForSale = "for_sale"
	StatusSold    = "sold"
)

// Property is one search result row: the property record joined 1:1 with its
// features record. JSON field names match the public API contract.
type Property struct {
	PropertyID int64   `json:"property_id"`
	CountyName string  `json:"county_name"`
	State      string  `json:"state"`
	Price      float64 `json:"price"`
	Status     string  `json:"status"`
	Bedrooms   int     `json:"bedrooms"`
	Bathrooms  float64 `json:"bathrooms"`
	AcreLot    float64 `json:"acre_lot"`
}
