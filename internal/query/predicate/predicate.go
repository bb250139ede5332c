// Package predicate compiles a SearchFilter into an ordered list of typed constraints.
// The same Set drives list queries, count queries and in-memory matching.
package predicate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/medilink/backend/internal/domain/entities"
	"github.com/medilink/backend/pkg/geo"
)

// Entity selects the collection a filter is compiled for
type Entity int

const (
	Facilities Entity = iota
	Practitioners
)

func (e Entity) String() string {
	if e == Practitioners {
		return "practitioners"
	}
	return "facilities"
}

// Field names a filterable or sortable attribute. Values match the storage column names.
type Field string

const (
	FieldID              Field = "id"
	FieldName            Field = "name"
	FieldIsActive        Field = "is_active"
	FieldCity            Field = "city"
	FieldState           Field = "state"
	FieldZipCode         Field = "zip_code"
	FieldFacilityType    Field = "facility_type"
	FieldProgramEligible Field = "program_eligible"
	FieldLatitude        Field = "latitude"
	FieldLongitude       Field = "longitude"
	FieldBedCount        Field = "bed_count"
	FieldSpecialty       Field = "specialty"
	FieldQualifications  Field = "qualifications"
	FieldExperienceYears Field = "experience_years"
	FieldConsultationFee Field = "consultation_fee"
	FieldFacilityID      Field = "facility_id"
	FieldRating          Field = "rating"
	FieldReviewCount     Field = "review_count"
)

var (
	FacilityLocalityFields     = []Field{FieldCity, FieldState, FieldZipCode}
	FacilitySecondaryFields    = []Field{FieldFacilityType}
	PractitionerLocalityFields = []Field{FieldCity, FieldState}
	// PractitionerSecondaryFields includes every qualification in the list.
	PractitionerSecondaryFields = []Field{FieldSpecialty, FieldQualifications}
)

// Constraint is a single restriction. Constraints in a Set are ANDed.
type Constraint interface {
	fmt.Stringer
	// Matches evaluates the constraint against an in-memory record.
	Matches(r Record) bool
	isConstraint()
}

// ExactMatch requires Field to equal Value
type ExactMatch struct {
	Field Field
	Value string
}

// SubstringMatch requires at least one of Fields to contain Value, ignoring case
type SubstringMatch struct {
	Fields []Field
	Value  string
}

// LowerBound requires Field >= Value
type LowerBound struct {
	Field Field
	Value float64
}

// UpperBound requires Field <= Value
type UpperBound struct {
	Field Field
	Value float64
}

// BooleanEquals requires Field to equal Value
type BooleanEquals struct {
	Field Field
	Value bool
}

func (ExactMatch) isConstraint()     {}
func (SubstringMatch) isConstraint() {}
func (LowerBound) isConstraint()     {}
func (UpperBound) isConstraint()     {}
func (BooleanEquals) isConstraint()  {}

func (c ExactMatch) String() string {
	return fmt.Sprintf("%s = %q", c.Field, c.Value)
}

func (c SubstringMatch) String() string {
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("%s ~ %q", strings.Join(names, "|"), c.Value)
}

func (c LowerBound) String() string {
	return fmt.Sprintf("%s >= %s", c.Field, formatFloat(c.Value))
}

func (c UpperBound) String() string {
	return fmt.Sprintf("%s <= %s", c.Field, formatFloat(c.Value))
}

func (c BooleanEquals) String() string {
	return fmt.Sprintf("%s = %t", c.Field, c.Value)
}

func (c ExactMatch) Matches(r Record) bool {
	v, ok := r.Value(c.Field).(string)
	return ok && v == c.Value
}

func (c SubstringMatch) Matches(r Record) bool {
	return MatchesAny(r, c.Fields, c.Value)
}

func (c LowerBound) Matches(r Record) bool {
	v, ok := numeric(r.Value(c.Field))
	return ok && v >= c.Value
}

func (c UpperBound) Matches(r Record) bool {
	v, ok := numeric(r.Value(c.Field))
	return ok && v <= c.Value
}

func (c BooleanEquals) Matches(r Record) bool {
	v, ok := r.Value(c.Field).(bool)
	return ok && v == c.Value
}

// Set is an ordered conjunction of constraints
type Set []Constraint

// String renders the set deterministically; equal filters render equal strings.
func (s Set) String() string {
	if len(s) == 0 {
		return "<all>"
	}
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

// Matches reports whether r satisfies every constraint
func (s Set) Matches(r Record) bool {
	for _, c := range s {
		if !c.Matches(r) {
			return false
		}
	}
	return true
}

// With returns a new set with extra constraints appended
func (s Set) With(extra ...Constraint) Set {
	out := make(Set, 0, len(s)+len(extra))
	out = append(out, s...)
	return append(out, extra...)
}

// Compile turns the present fields of filter into constraints for the given collection.
// Criteria that do not apply to the collection are ignored.
func Compile(filter entities.SearchFilter, entity Entity) Set {
	if entity == Practitioners {
		return compilePractitioners(filter)
	}
	return compileFacilities(filter)
}

func compileFacilities(filter entities.SearchFilter) Set {
	set := Set{BooleanEquals{Field: FieldIsActive, Value: true}}

	if category := strings.TrimSpace(filter.Category); category != "" {
		set = append(set, ExactMatch{Field: FieldFacilityType, Value: category})
	}
	if locality := strings.TrimSpace(filter.Locality); locality != "" {
		set = append(set, SubstringMatch{Fields: FacilityLocalityFields, Value: locality})
	}
	if filter.ProgramEligible != nil {
		set = append(set, BooleanEquals{Field: FieldProgramEligible, Value: *filter.ProgramEligible})
	}
	if filter.HasProximity() {
		box := geo.BoundingBox(filter.Center.Latitude, filter.Center.Longitude, *filter.RadiusKm)
		set = append(set,
			LowerBound{Field: FieldLatitude, Value: box.MinLat},
			UpperBound{Field: FieldLatitude, Value: box.MaxLat},
			LowerBound{Field: FieldLongitude, Value: box.MinLng},
			UpperBound{Field: FieldLongitude, Value: box.MaxLng},
		)
	}
	if query := strings.TrimSpace(filter.Query); query != "" {
		set = append(set, SubstringMatch{Fields: FacilityTextFields(), Value: query})
	}
	return set
}

func compilePractitioners(filter entities.SearchFilter) Set {
	set := Set{BooleanEquals{Field: FieldIsActive, Value: true}}

	if category := strings.TrimSpace(filter.Category); category != "" {
		set = append(set, ExactMatch{Field: FieldSpecialty, Value: category})
	}
	if locality := strings.TrimSpace(filter.Locality); locality != "" {
		set = append(set, SubstringMatch{Fields: PractitionerLocalityFields, Value: locality})
	}
	if filter.MinExperience != nil {
		set = append(set, LowerBound{Field: FieldExperienceYears, Value: float64(*filter.MinExperience)})
	}
	if filter.MaxFee != nil {
		set = append(set, UpperBound{Field: FieldConsultationFee, Value: *filter.MaxFee})
	}
	if facilityID := strings.TrimSpace(filter.FacilityID); facilityID != "" {
		set = append(set, ExactMatch{Field: FieldFacilityID, Value: facilityID})
	}
	if query := strings.TrimSpace(filter.Query); query != "" {
		set = append(set, SubstringMatch{Fields: PractitionerTextFields(), Value: query})
	}
	return set
}

// FacilityTextFields lists every field a facility text query is matched against
func FacilityTextFields() []Field {
	out := []Field{FieldName}
	out = append(out, FacilityLocalityFields...)
	return append(out, FacilitySecondaryFields...)
}

// PractitionerTextFields lists every field a practitioner text query is matched against
func PractitionerTextFields() []Field {
	out := []Field{FieldName}
	out = append(out, PractitionerLocalityFields...)
	return append(out, PractitionerSecondaryFields...)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
