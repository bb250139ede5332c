package entities

import (
	"fmt"
	"math"
	"time"

	"github.com/medilink/backend/pkg/geo"
)

// Facility represents a healthcare facility in the system
type Facility struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	FacilityType    string    `json:"facility_type" db:"facility_type"`
	Address         Address   `json:"address" db:"-"`
	Location        GeoPoint  `json:"location" db:"-"`
	PhoneNumber     string    `json:"phone_number" db:"phone_number"`
	Email           string    `json:"email" db:"email"`
	Website         string    `json:"website" db:"website"`
	BedCount        int       `json:"bed_count" db:"bed_count"`
	ProgramEligible bool      `json:"program_eligible" db:"program_eligible"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Address represents a physical address
type Address struct {
	Street  string `json:"street" db:"street"`
	City    string `json:"city" db:"city"`
	State   string `json:"state" db:"state"`
	ZipCode string `json:"zip_code" db:"zip_code"`
	Country string `json:"country" db:"country"`
}

// GeoPoint represents geographical coordinates in degrees
type GeoPoint struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// Validate checks that the point lies within the valid coordinate ranges
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) || math.IsInf(p.Latitude, 0) || math.IsInf(p.Longitude, 0) {
		return fmt.Errorf("coordinates must be finite numbers")
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", p.Longitude)
	}
	return nil
}

// DistanceTo returns the great-circle distance to other in kilometres
func (p GeoPoint) DistanceTo(other GeoPoint) float64 {
	return geo.Haversine(p.Latitude, p.Longitude, other.Latitude, other.Longitude)
}

// FacilitySummary is the read-only slice of a facility attached to related results
type FacilitySummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	City  string `json:"city"`
	State string `json:"state"`
}

// Summary returns the facility's summary
func (f *Facility) Summary() FacilitySummary {
	return FacilitySummary{
		ID:    f.ID,
		Name:  f.Name,
		City:  f.Address.City,
		State: f.Address.State,
	}
}

// FacilityResult is a facility as returned by discovery, optionally with its distance from a search center
type FacilityResult struct {
	Facility
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// NewFacilityResult copies f into a result
func NewFacilityResult(f *Facility, distanceKm *float64) FacilityResult {
	var d *float64
	if distanceKm != nil {
		v := *distanceKm
		d = &v
	}
	return FacilityResult{Facility: *f, DistanceKm: d}
}
