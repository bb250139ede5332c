package predicate

import (
	"cmp"
	"strings"

	"github.com/medilink/backend/internal/domain/entities"
)

// Record exposes field values for in-memory evaluation.
// Values are string, []string, bool, int or float64; nil means unset.
type Record interface {
	Value(f Field) any
}

// FacilityRecord adapts a facility to Record
type FacilityRecord struct {
	*entities.Facility
}

// Value implements Record
func (r FacilityRecord) Value(f Field) any {
	switch f {
	case FieldID:
		return r.ID
	case FieldName:
		return r.Name
	case FieldIsActive:
		return r.IsActive
	case FieldCity:
		return r.Address.City
	case FieldState:
		return r.Address.State
	case FieldZipCode:
		return r.Address.ZipCode
	case FieldFacilityType:
		return r.FacilityType
	case FieldProgramEligible:
		return r.ProgramEligible
	case FieldLatitude:
		return r.Location.Latitude
	case FieldLongitude:
		return r.Location.Longitude
	case FieldBedCount:
		return r.BedCount
	}
	return nil
}

// PractitionerRecord adapts a practitioner to Record
type PractitionerRecord struct {
	*entities.Practitioner
}

// Value implements Record
func (r PractitionerRecord) Value(f Field) any {
	switch f {
	case FieldID:
		return r.ID
	case FieldName:
		return r.Name
	case FieldIsActive:
		return r.IsActive
	case FieldCity:
		return r.City
	case FieldState:
		return r.State
	case FieldSpecialty:
		return r.Specialty
	case FieldQualifications:
		return r.Qualifications
	case FieldExperienceYears:
		return r.ExperienceYears
	case FieldConsultationFee:
		return r.ConsultationFee
	case FieldFacilityID:
		if r.FacilityID == nil {
			return nil
		}
		return *r.FacilityID
	case FieldRating:
		return r.Rating
	case FieldReviewCount:
		return r.ReviewCount
	}
	return nil
}

// MatchesAny reports whether any of fields contains needle, ignoring case.
// List fields match when any element contains needle.
func MatchesAny(r Record, fields []Field, needle string) bool {
	needle = strings.ToLower(needle)
	for _, f := range fields {
		switch v := r.Value(f).(type) {
		case string:
			if strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		case []string:
			for _, s := range v {
				if strings.Contains(strings.ToLower(s), needle) {
					return true
				}
			}
		}
	}
	return false
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Order is one sort key
type Order struct {
	Field Field
	Desc  bool
}

var (
	// FacilityOrder is the canonical facility listing order: largest first, then name, then id.
	FacilityOrder = []Order{{Field: FieldBedCount, Desc: true}, {Field: FieldName}, {Field: FieldID}}

	// PractitionerOrder is the canonical practitioner listing order: best rated first.
	PractitionerOrder = []Order{
		{Field: FieldRating, Desc: true},
		{Field: FieldReviewCount, Desc: true},
		{Field: FieldName},
		{Field: FieldID},
	}
)

// Compare orders a and b by the given keys, returning -1, 0 or 1
func Compare(a, b Record, orders []Order) int {
	for _, o := range orders {
		c := compareValues(a.Value(o.Field), b.Value(o.Field))
		if o.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// Less reports whether a sorts before b
func Less(a, b Record, orders []Order) bool {
	return Compare(a, b, orders) < 0
}

func compareValues(a, b any) int {
	if x, ok := numeric(a); ok {
		y, _ := numeric(b)
		return cmp.Compare(x, y)
	}
	switch x := a.(type) {
	case string:
		y, _ := b.(string)
		return cmp.Compare(x, y)
	case bool:
		y, _ := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	}
	return 0
}
