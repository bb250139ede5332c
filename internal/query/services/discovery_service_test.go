package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/medilink/backend/internal/adapters/memory"
	"github.com/medilink/backend/internal/domain/entities"
	"github.com/medilink/backend/internal/domain/repositories"
	"github.com/medilink/backend/internal/query/predicate"
	"github.com/medilink/backend/internal/query/ranking"
	apperrors "github.com/medilink/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFacilityRepository is a mock implementation of FacilityRepository
type MockFacilityRepository struct {
	mock.Mock
}

func (m *MockFacilityRepository) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Facility), args.Error(1)
}

func (m *MockFacilityRepository) GetSummariesByIDs(ctx context.Context, ids []string) ([]entities.FacilitySummary, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.FacilitySummary), args.Error(1)
}

func (m *MockFacilityRepository) Find(ctx context.Context, q repositories.Query) ([]*entities.Facility, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Facility), args.Error(1)
}

func (m *MockFacilityRepository) Count(ctx context.Context, constraints predicate.Set) (int, error) {
	args := m.Called(ctx, constraints)
	return args.Int(0), args.Error(1)
}

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string { return &v }

type fixture struct {
	service       *DiscoveryService
	facilities    *memory.FacilityRepository
	practitioners *memory.PractitionerRepository
}

func newFixture(t *testing.T, opts Options, facilities []*entities.Facility, practitioners []*entities.Practitioner) fixture {
	t.Helper()
	store := memory.NewStoreFromDataset(&memory.Dataset{Facilities: facilities, Practitioners: practitioners})
	f := fixture{
		facilities:    memory.NewFacilityRepository(store),
		practitioners: memory.NewPractitionerRepository(store),
	}
	f.service = NewDiscoveryService(f.facilities, f.practitioners, opts)
	return f
}

func facility(id, name, city string, beds int) *entities.Facility {
	return &entities.Facility{
		ID:           id,
		Name:         name,
		FacilityType: "hospital",
		Address:      entities.Address{City: city},
		BedCount:     beds,
		IsActive:     true,
	}
}

func facilityIDs(items []entities.FacilityResult) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func practitionerIDs(items []entities.PractitionerResult) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func TestFindFacilitiesByCity_LargestFirst(t *testing.T) {
	f := newFixture(t, DefaultOptions(), []*entities.Facility{
		facility("a", "Springfield North", "Springfield", 50),
		facility("b", "Springfield South", "Springfield", 200),
		facility("c", "Springfield East", "Springfield", 10),
		facility("d", "Capital", "Capital City", 500),
	}, nil)

	page, err := f.service.FindFacilitiesByCity(context.Background(), "springfield", 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, facilityIDs(page.Items))
	assert.Equal(t, 3, page.Total)
	assert.True(t, page.HasMore)
}

func TestFindNearby_StrictRadius(t *testing.T) {
	candidates := []*entities.Facility{
		{ID: "origin", Name: "Origin", IsActive: true, Location: entities.GeoPoint{Latitude: 0, Longitude: 0}},
		{ID: "near", Name: "Near", IsActive: true, Location: entities.GeoPoint{Latitude: 0.5, Longitude: 0}},
		{ID: "far", Name: "Far", IsActive: true, Location: entities.GeoPoint{Latitude: 2, Longitude: 0}},
		{ID: "corner", Name: "Corner", IsActive: true, Location: entities.GeoPoint{Latitude: 0.85, Longitude: 0.85}},
	}

	strict := DefaultOptions()
	strict.StrictRadius = true
	f := newFixture(t, strict, candidates, nil)

	results, err := f.service.FindNearby(context.Background(), entities.GeoPoint{}, 100, 10)

	require.NoError(t, err)
	assert.Equal(t, []string{"origin", "near"}, facilityIDs(results))
	assert.InDelta(t, 55.6, *results[1].DistanceKm, 0.2)

	lenient := newFixture(t, DefaultOptions(), candidates, nil)
	results, err = lenient.service.FindNearby(context.Background(), entities.GeoPoint{}, 100, 10)

	require.NoError(t, err)
	assert.Equal(t, []string{"origin", "near", "corner"}, facilityIDs(results))
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, *results[i-1].DistanceKm, *results[i].DistanceKm)
	}
}

func TestFindNearby_InvalidInput(t *testing.T) {
	f := newFixture(t, DefaultOptions(), nil, nil)

	tests := []struct {
		name   string
		center entities.GeoPoint
		radius float64
		limit  int
	}{
		{name: "latitude out of range", center: entities.GeoPoint{Latitude: 91}, radius: 10, limit: 10},
		{name: "longitude out of range", center: entities.GeoPoint{Longitude: -181}, radius: 10, limit: 10},
		{name: "zero radius", radius: 0, limit: 10},
		{name: "NaN latitude", center: entities.GeoPoint{Latitude: math.NaN()}, radius: 10, limit: 5},
		{name: "NaN radius", radius: math.NaN(), limit: 5},
		{name: "infinite radius", radius: math.Inf(1), limit: 5},
		{name: "negative limit", radius: 10, limit: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.FindNearby(context.Background(), tt.center, tt.radius, tt.limit)
			assert.True(t, apperrors.IsInvalidParameter(err))
		})
	}
}

func TestSearchFacilities_NameBeatsLocality(t *testing.T) {
	f := newFixture(t, DefaultOptions(), []*entities.Facility{
		facility("loc", "St. Jude", "City Hospital District", 900),
		facility("name", "Riverside City Clinic", "Ikeja", 5),
		facility("none", "Unrelated", "Abuja", 1000),
	}, nil)

	page, err := f.service.SearchFacilities(context.Background(), "city", 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"name", "loc"}, facilityIDs(page.Items))
	assert.Equal(t, 2, page.Total)
	assert.False(t, page.HasMore)
	assert.Equal(t, 20, page.Limit)
}

func TestSearchFacilities_CapsAndCounts(t *testing.T) {
	var facilities []*entities.Facility
	for i := 0; i < 30; i++ {
		facilities = append(facilities, facility(fmt.Sprintf("f%02d", i), "Clinic", "Lagos", i))
	}
	opts := DefaultOptions()
	opts.FacilitySearchLimit = 5
	f := newFixture(t, opts, facilities, nil)

	page, err := f.service.SearchFacilities(context.Background(), "clinic", 100)

	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 30, page.Total)
	assert.True(t, page.HasMore)
	assert.Equal(t, "f29", page.Items[0].ID)
}

func TestSearchFacilities_RejectsEmptyQuery(t *testing.T) {
	f := newFixture(t, DefaultOptions(), nil, nil)

	_, err := f.service.SearchFacilities(context.Background(), "   ", 10)

	assert.True(t, apperrors.IsInvalidParameter(err))
}

func TestListFacilities_ProximityTotalsUncappedSet(t *testing.T) {
	var facilities []*entities.Facility
	for i := 0; i < 12; i++ {
		facilities = append(facilities, &entities.Facility{
			ID:       fmt.Sprintf("f%02d", i),
			Name:     "Facility",
			IsActive: true,
			Location: entities.GeoPoint{Latitude: float64(i) * 0.05},
		})
	}
	facilities = append(facilities, &entities.Facility{ID: "outside", IsActive: true, Location: entities.GeoPoint{Latitude: 5}})
	f := newFixture(t, DefaultOptions(), facilities, nil)

	filter := entities.NewSearchFilter()
	filter.Center = &entities.GeoPoint{}
	filter.RadiusKm = floatPtr(100)
	filter.Limit = 5
	filter.Offset = 10

	page, err := f.service.ListFacilities(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, []string{"f10", "f11"}, facilityIDs(page.Items))
	assert.False(t, page.HasMore)
	require.NotNil(t, page.Items[0].DistanceKm)
}

func TestListFacilities_ProximityNeedsCenterAndRadius(t *testing.T) {
	f := newFixture(t, DefaultOptions(), nil, nil)

	filter := entities.NewSearchFilter()
	filter.RadiusKm = floatPtr(10)

	_, err := f.service.ListFacilities(context.Background(), filter)

	assert.True(t, apperrors.IsInvalidParameter(err))
}

func TestListFacilities_RejectsNonPositiveLimit(t *testing.T) {
	repo := new(MockFacilityRepository)
	service := NewDiscoveryService(repo, nil, DefaultOptions())

	filter := entities.NewSearchFilter()
	filter.Limit = -1

	_, err := service.ListFacilities(context.Background(), filter)

	assert.True(t, apperrors.IsInvalidParameter(err))
	repo.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
}

func TestListFacilities_EligibilityFilter(t *testing.T) {
	eligible := facility("e", "Eligible", "Lagos", 10)
	eligible.ProgramEligible = true
	f := newFixture(t, DefaultOptions(), []*entities.Facility{eligible, facility("n", "Not", "Lagos", 20)}, nil)

	filter := entities.NewSearchFilter()
	yes := true
	filter.ProgramEligible = &yes

	page, err := f.service.ListFacilities(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, facilityIDs(page.Items))
	assert.Equal(t, 1, page.Total)
}

func practitionerDataset() ([]*entities.Facility, []*entities.Practitioner) {
	facilities := []*entities.Facility{
		facility("f1", "Lagos General", "Lagos", 300),
		facility("f2", "Ikeja Clinic", "Ikeja", 40),
	}
	var practitioners []*entities.Practitioner
	for i := 0; i < 23; i++ {
		p := &entities.Practitioner{
			ID:              fmt.Sprintf("p%02d", i),
			Name:            fmt.Sprintf("Dr. %02d", i),
			Specialty:       "Cardiology",
			City:            "Lagos",
			ExperienceYears: i,
			ConsultationFee: float64(1000 * i),
			Rating:          float64(i%5) + 0.5,
			ReviewCount:     i,
			IsActive:        true,
		}
		if i%2 == 0 {
			p.FacilityID = strPtr("f1")
		} else if i%3 == 0 {
			p.FacilityID = strPtr("f2")
		}
		practitioners = append(practitioners, p)
	}
	return facilities, practitioners
}

func TestListPractitioners_CountUsesSameConstraints(t *testing.T) {
	facilities, practitioners := practitionerDataset()
	f := newFixture(t, DefaultOptions(), facilities, practitioners)

	filter := entities.NewSearchFilter()
	filter.Category = "Cardiology"
	filter.MinExperience = intPtr(10)
	filter.MaxFee = floatPtr(15000)
	filter.Limit = 3

	page, err := f.service.ListPractitioners(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	assert.Len(t, page.Items, 3)
	assert.True(t, page.HasMore)
	for _, p := range page.Items {
		assert.GreaterOrEqual(t, p.ExperienceYears, 10)
		assert.LessOrEqual(t, p.ConsultationFee, 15000.0)
	}
}

func TestListPractitioners_PagesAreConsistent(t *testing.T) {
	facilities, practitioners := practitionerDataset()
	f := newFixture(t, DefaultOptions(), facilities, practitioners)

	seen := map[string]bool{}
	total := -1
	for offset := 0; ; offset += 5 {
		filter := entities.NewSearchFilter()
		filter.Limit = 5
		filter.Offset = offset

		page, err := f.service.ListPractitioners(context.Background(), filter)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(page.Items), 5)
		assert.Equal(t, page.Offset+len(page.Items) < page.Total, page.HasMore)
		total = page.Total
		for _, p := range page.Items {
			assert.False(t, seen[p.ID], "duplicate %s", p.ID)
			seen[p.ID] = true
		}
		if !page.HasMore {
			break
		}
	}

	assert.Equal(t, 23, total)
	assert.Len(t, seen, 23)
}

func TestListPractitioners_EnrichesWithFacilitySummary(t *testing.T) {
	facilities, practitioners := practitionerDataset()
	f := newFixture(t, DefaultOptions(), facilities, practitioners)

	filter := entities.NewSearchFilter()
	filter.Limit = 30

	page, err := f.service.ListPractitioners(context.Background(), filter)
	require.NoError(t, err)

	for _, p := range page.Items {
		switch {
		case p.FacilityID == nil:
			assert.Nil(t, p.Facility)
		case *p.FacilityID == "f1":
			require.NotNil(t, p.Facility)
			assert.Equal(t, "Lagos General", p.Facility.Name)
		case *p.FacilityID == "f2":
			require.NotNil(t, p.Facility)
			assert.Equal(t, "Ikeja", p.Facility.City)
		}
	}
}

func TestListPractitioners_MonotonicFilters(t *testing.T) {
	facilities, practitioners := practitionerDataset()
	f := newFixture(t, DefaultOptions(), facilities, practitioners)

	base := entities.NewSearchFilter()
	base.Limit = 100
	basePage, err := f.service.ListPractitioners(context.Background(), base)
	require.NoError(t, err)
	baseIDs := map[string]bool{}
	for _, id := range practitionerIDs(basePage.Items) {
		baseIDs[id] = true
	}

	narrowed := base
	narrowed.MinExperience = intPtr(5)
	narrowed.Locality = "lag"
	page, err := f.service.ListPractitioners(context.Background(), narrowed)
	require.NoError(t, err)

	assert.LessOrEqual(t, page.Total, basePage.Total)
	for _, id := range practitionerIDs(page.Items) {
		assert.True(t, baseIDs[id], "%s not in base result", id)
	}
}

func TestListFacilityPractitioners(t *testing.T) {
	facilities, practitioners := practitionerDataset()
	f := newFixture(t, DefaultOptions(), facilities, practitioners)

	page, err := f.service.ListFacilityPractitioners(context.Background(), "f2", entities.NewSearchFilter())
	require.NoError(t, err)
	for _, p := range page.Items {
		assert.Equal(t, "f2", *p.FacilityID)
	}
	assert.Equal(t, len(page.Items), page.Total)

	_, err = f.service.ListFacilityPractitioners(context.Background(), "missing", entities.NewSearchFilter())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSearchPractitioners_BucketPrecedence(t *testing.T) {
	f := newFixture(t, DefaultOptions(), nil, []*entities.Practitioner{
		{ID: "specialty", Name: "Dr. Obi", Specialty: "Pediatrics", Rating: 5, IsActive: true},
		{ID: "city", Name: "Dr. Eze", City: "Pedro Town", Rating: 1, IsActive: true},
		{ID: "name", Name: "Dr. Pedro", Rating: 2, IsActive: true},
		{ID: "inactive", Name: "Dr. Pedro Sr.", Rating: 5},
	})

	page, err := f.service.SearchPractitioners(context.Background(), "ped", 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"name", "city", "specialty"}, practitionerIDs(page.Items))
	assert.Equal(t, 50, page.Limit)
	for i := 1; i < len(page.Items); i++ {
		prev := ranking.PractitionerBucket("ped", &page.Items[i-1].Practitioner)
		cur := ranking.PractitionerBucket("ped", &page.Items[i].Practitioner)
		assert.LessOrEqual(t, prev, cur)
	}
}

func TestGetFacility(t *testing.T) {
	inactive := facility("off", "Closed", "Lagos", 10)
	inactive.IsActive = false
	f := newFixture(t, DefaultOptions(), []*entities.Facility{facility("on", "Open", "Lagos", 10), inactive}, nil)

	got, err := f.service.GetFacility(context.Background(), "on")
	require.NoError(t, err)
	assert.Equal(t, "Open", got.Name)
	assert.Nil(t, got.DistanceKm)

	_, err = f.service.GetFacility(context.Background(), "off")
	assert.True(t, apperrors.IsNotFound(err))

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "GetFacility", appErr.Op)
	assert.Contains(t, appErr.Snapshot, `id = "off"`)
}

func TestGetPractitioner_Enriched(t *testing.T) {
	facilities, practitioners := practitionerDataset()
	f := newFixture(t, DefaultOptions(), facilities, practitioners)

	got, err := f.service.GetPractitioner(context.Background(), "p00")
	require.NoError(t, err)
	require.NotNil(t, got.Facility)
	assert.Equal(t, "f1", got.Facility.ID)

	_, err = f.service.GetPractitioner(context.Background(), "nobody")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestStoreFailureIsWrapped(t *testing.T) {
	repo := new(MockFacilityRepository)
	repo.On("Find", mock.Anything, mock.Anything).Return(nil, apperrors.NewStoreUnavailableError("query failed", errors.New("connection refused")))
	service := NewDiscoveryService(repo, nil, DefaultOptions())

	filter := entities.NewSearchFilter()
	filter.Locality = "lagos"

	_, err := service.ListFacilities(context.Background(), filter)

	require.Error(t, err)
	assert.True(t, apperrors.IsStoreUnavailable(err))
	appErr, _ := apperrors.As(err)
	assert.Equal(t, "ListFacilities", appErr.Op)
	assert.Equal(t, predicate.Compile(filter, predicate.Facilities).String(), appErr.Snapshot)
	assert.Contains(t, err.Error(), "connection refused")
	repo.AssertNumberOfCalls(t, "Find", 1)
}

func TestStoreTimeoutBecomesStoreUnavailable(t *testing.T) {
	repo := new(MockFacilityRepository)
	repo.On("Find", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)
	opts := DefaultOptions()
	opts.StoreTimeout = 10 * time.Millisecond
	service := NewDiscoveryService(repo, nil, opts)

	_, err := service.FindNearby(context.Background(), entities.GeoPoint{}, 10, 5)

	assert.True(t, apperrors.IsStoreUnavailable(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCountFailureIsSurfaced(t *testing.T) {
	repo := new(MockFacilityRepository)
	repo.On("Find", mock.Anything, mock.Anything).Return([]*entities.Facility{facility("a", "A", "Lagos", 1)}, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(0, errors.New("bad scan"))
	service := NewDiscoveryService(repo, nil, DefaultOptions())

	_, err := service.ListFacilities(context.Background(), entities.NewSearchFilter())

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
}
