// Package seed loads a dataset into facility and practitioner storage.
package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/medilink/backend/internal/adapters/memory"
	"github.com/medilink/backend/internal/domain/entities"
	"github.com/medilink/backend/internal/domain/repositories"
)

// Summary counts what Load wrote
type Summary struct {
	Facilities    int
	Practitioners int
}

// AssignIDs gives every record without an id a fresh UUID
func AssignIDs(ds *memory.Dataset) {
	for _, f := range ds.Facilities {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
	}
	for _, p := range ds.Practitioners {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
	}
}

// Load writes facilities before practitioners so facility references resolve
func Load(ctx context.Context, ds *memory.Dataset, facilities repositories.FacilityWriter, practitioners repositories.PractitionerWriter) (Summary, error) {
	AssignIDs(ds)

	var sum Summary
	for _, f := range ds.Facilities {
		if err := facilities.Create(ctx, f); err != nil {
			return sum, fmt.Errorf("facility %s: %w", f.ID, err)
		}
		sum.Facilities++
	}
	for _, p := range ds.Practitioners {
		if err := practitioners.Create(ctx, p); err != nil {
			return sum, fmt.Errorf("practitioner %s: %w", p.ID, err)
		}
		sum.Practitioners++
	}
	return sum, nil
}

type demoCity struct {
	name, state, zip string
	lat, lng         float64
}

var demoCities = []demoCity{
	{"Ikeja", "Lagos", "100001", 6.6018, 3.3515},
	{"Yaba", "Lagos", "101212", 6.5095, 3.3711},
	{"Wuse", "FCT", "900281", 9.0765, 7.4986},
	{"Ibadan", "Oyo", "200001", 7.3775, 3.9470},
}

var (
	demoTypes       = []string{"hospital", "clinic", "diagnostic_center"}
	demoSpecialties = []string{"Cardiology", "General Practice", "Pediatrics", "Dermatology"}
	demoDays        = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}
)

// Demo builds a deterministic dataset of perCity facilities in each demo city, each with two practitioners
func Demo(perCity int) *memory.Dataset {
	ds := &memory.Dataset{}
	n := 0
	for _, c := range demoCities {
		for i := 0; i < perCity; i++ {
			n++
			facilityID := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("facility/%d", n))).String()
			facilityType := demoTypes[n%len(demoTypes)]
			ds.Facilities = append(ds.Facilities, &entities.Facility{
				ID:           facilityID,
				Name:         fmt.Sprintf("%s %s %d", c.name, facilityType, i+1),
				FacilityType: facilityType,
				Address: entities.Address{
					Street:  fmt.Sprintf("%d Hospital Road", 10+i),
					City:    c.name,
					State:   c.state,
					ZipCode: c.zip,
					Country: "NG",
				},
				Location: entities.GeoPoint{
					Latitude:  c.lat + float64(i)*0.01,
					Longitude: c.lng + float64(i)*0.01,
				},
				BedCount:        (n * 37) % 300,
				ProgramEligible: n%2 == 0,
				IsActive:        n%11 != 0,
			})

			for j := 0; j < 2; j++ {
				id := facilityID
				specialty := demoSpecialties[(n+j)%len(demoSpecialties)]
				ds.Practitioners = append(ds.Practitioners, &entities.Practitioner{
					ID:              uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("practitioner/%d/%d", n, j))).String(),
					Name:            fmt.Sprintf("Dr. %s %d-%d", c.name, n, j+1),
					Specialty:       specialty,
					Qualifications:  []string{"MBBS"},
					ExperienceYears: (n + j*7) % 25,
					ConsultationFee: float64(5000 + ((n+j)%10)*1500),
					FacilityID:      &id,
					City:            c.name,
					State:           c.state,
					Rating:          float64((n+j)%50) / 10,
					ReviewCount:     (n * 13) % 200,
					Availability: entities.Availability{
						Days:              append([]string(nil), demoDays...),
						StartTime:         "09:00",
						EndTime:           "17:00",
						AcceptingPatients: j == 0,
					},
					IsActive: true,
				})
			}
		}
	}
	return ds
}
