package entities

// DefaultPageSize is the page size applied when a caller gives none
const DefaultPageSize = 20

// SearchFilter holds the optional criteria of a discovery query.
// Zero strings and nil pointers mean the criterion is absent.
type SearchFilter struct {
	// Category is the facility type or the practitioner specialty.
	Category string
	// Locality is matched as a substring of city, state or postal code.
	Locality        string
	Query           string
	FacilityID      string
	MinExperience   *int
	MaxFee          *float64
	ProgramEligible *bool
	Center          *GeoPoint
	RadiusKm        *float64
	Limit           int
	Offset          int
}

// NewSearchFilter returns an empty filter with the default page size
func NewSearchFilter() SearchFilter {
	return SearchFilter{Limit: DefaultPageSize}
}

// HasProximity reports whether the filter asks for a radius search
func (f SearchFilter) HasProximity() bool {
	return f.Center != nil && f.RadiusKm != nil
}

// RankedResultSet is one page of ordered results plus the total matching the same filter
type RankedResultSet[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}
