package entities

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoPoint_Validate(t *testing.T) {
	tests := []struct {
		name    string
		point   GeoPoint
		wantErr bool
	}{
		{name: "origin", point: GeoPoint{}, wantErr: false},
		{name: "poles and antimeridian", point: GeoPoint{Latitude: -90, Longitude: 180}, wantErr: false},
		{name: "latitude too high", point: GeoPoint{Latitude: 90.1}, wantErr: true},
		{name: "longitude too low", point: GeoPoint{Longitude: -180.5}, wantErr: true},
		{name: "NaN latitude", point: GeoPoint{Latitude: math.NaN()}, wantErr: true},
		{name: "NaN longitude", point: GeoPoint{Longitude: math.NaN()}, wantErr: true},
		{name: "infinite latitude", point: GeoPoint{Latitude: math.Inf(1)}, wantErr: true},
		{name: "infinite longitude", point: GeoPoint{Longitude: math.Inf(-1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.point.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPractitioner_CloneIsIndependent(t *testing.T) {
	facilityID := "fac-1"
	original := &Practitioner{
		ID:             "doc-1",
		Qualifications: []string{"MBBS"},
		FacilityID:     &facilityID,
		Availability:   Availability{Days: []string{"Mon"}},
	}

	clone := original.Clone()
	clone.Qualifications[0] = "changed"
	clone.Availability.Days[0] = "Sun"
	*clone.FacilityID = "fac-2"

	assert.Equal(t, "MBBS", original.Qualifications[0])
	assert.Equal(t, "Mon", original.Availability.Days[0])
	assert.Equal(t, "fac-1", *original.FacilityID)
}

func TestNewFacilityResult_CopiesDistance(t *testing.T) {
	d := 12.5
	f := &Facility{ID: "fac-1", Name: "General"}

	result := NewFacilityResult(f, &d)
	d = 99
	f.Name = "Renamed"

	require.NotNil(t, result.DistanceKm)
	assert.Equal(t, 12.5, *result.DistanceKm)
	assert.Equal(t, "General", result.Name)
}

func TestNewSearchFilter_DefaultsPageSize(t *testing.T) {
	f := NewSearchFilter()

	assert.Equal(t, DefaultPageSize, f.Limit)
	assert.Zero(t, f.Offset)
	assert.False(t, f.HasProximity())
}
