package entities

import (
	"slices"
	"time"
)

// Practitioner represents a doctor or other clinician
type Practitioner struct {
	ID              string       `json:"id" db:"id"`
	Name            string       `json:"name" db:"name"`
	Specialty       string       `json:"specialty" db:"specialty"`
	Qualifications  []string     `json:"qualifications" db:"qualifications"`
	ExperienceYears int          `json:"experience_years" db:"experience_years"`
	ConsultationFee float64      `json:"consultation_fee" db:"consultation_fee"`
	FacilityID      *string      `json:"facility_id,omitempty" db:"facility_id"`
	City            string       `json:"city" db:"city"`
	State           string       `json:"state" db:"state"`
	Rating          float64      `json:"rating" db:"rating"`
	ReviewCount     int          `json:"review_count" db:"review_count"`
	Availability    Availability `json:"availability" db:"-"`
	IsActive        bool         `json:"is_active" db:"is_active"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" db:"updated_at"`
}

// Availability describes when a practitioner sees patients
type Availability struct {
	Days              []string `json:"days"`
	StartTime         string   `json:"start_time"`
	EndTime           string   `json:"end_time"`
	AcceptingPatients bool     `json:"accepting_patients"`
}

// Clone returns a deep copy of the practitioner
func (p *Practitioner) Clone() Practitioner {
	out := *p
	out.Qualifications = slices.Clone(p.Qualifications)
	out.Availability.Days = slices.Clone(p.Availability.Days)
	if p.FacilityID != nil {
		id := *p.FacilityID
		out.FacilityID = &id
	}
	return out
}

// PractitionerResult is a practitioner with its facility summary attached
type PractitionerResult struct {
	Practitioner
	Facility *FacilitySummary `json:"facility,omitempty"`
}
