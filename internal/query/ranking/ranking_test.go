package ranking

import (
	"testing"

	"github.com/medilink/backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func facilityAt(id string, lat, lng float64, beds int) *entities.Facility {
	return &entities.Facility{
		ID:       id,
		Name:     "Facility " + id,
		BedCount: beds,
		IsActive: true,
		Location: entities.GeoPoint{Latitude: lat, Longitude: lng},
	}
}

func resultIDs(results []entities.FacilityResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

func TestProximityRanker_StrictRadiusDropsOutsideCircle(t *testing.T) {
	candidates := []*entities.Facility{
		facilityAt("far", 2, 0, 10),
		facilityAt("mid", 0.5, 0, 10),
		facilityAt("here", 0, 0, 10),
	}

	results := ProximityRanker{StrictRadius: true}.Rank(entities.GeoPoint{}, 100, candidates, 10)

	require.Len(t, results, 2)
	assert.Equal(t, []string{"here", "mid"}, resultIDs(results))
	assert.InDelta(t, 0, *results[0].DistanceKm, 1e-9)
	assert.InDelta(t, 55.6, *results[1].DistanceKm, 0.2)
}

func TestProximityRanker_LenientKeepsBoxCorners(t *testing.T) {
	corner := facilityAt("corner", 0.85, 0.85, 10)

	lenient := ProximityRanker{}.Rank(entities.GeoPoint{}, 100, []*entities.Facility{corner}, 0)
	strict := ProximityRanker{StrictRadius: true}.Rank(entities.GeoPoint{}, 100, []*entities.Facility{corner}, 0)

	require.Len(t, lenient, 1)
	assert.Greater(t, *lenient[0].DistanceKm, 100.0)
	assert.Empty(t, strict)
}

func TestProximityRanker_TiesPreferLargerFacility(t *testing.T) {
	candidates := []*entities.Facility{
		facilityAt("b-small", 1, 1, 10),
		facilityAt("a-small", 1, 1, 10),
		facilityAt("big", 1, 1, 300),
	}

	results := ProximityRanker{}.Rank(entities.GeoPoint{}, 500, candidates, 0)

	assert.Equal(t, []string{"big", "a-small", "b-small"}, resultIDs(results))
}

func TestProximityRanker_DistanceOrderingAndLimit(t *testing.T) {
	var candidates []*entities.Facility
	for i, lat := range []float64{0.9, 0.1, 0.7, 0.3, 0.5, 0.2, 0.8} {
		candidates = append(candidates, facilityAt(string(rune('a'+i)), lat, 0, i))
	}

	results := ProximityRanker{}.Rank(entities.GeoPoint{}, 100, candidates, 4)

	require.Len(t, results, 4)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, *results[i-1].DistanceKm, *results[i].DistanceKm)
	}
}

func TestProximityRanker_DoesNotMutateCandidates(t *testing.T) {
	f := facilityAt("a", 0.1, 0.1, 10)

	results := ProximityRanker{}.Rank(entities.GeoPoint{}, 50, []*entities.Facility{f}, 0)
	results[0].Name = "changed"

	assert.Equal(t, "Facility a", f.Name)
}

func TestRankFacilities_NameBeatsLocality(t *testing.T) {
	named := &entities.Facility{ID: "1", Name: "Capital City Clinic", BedCount: 5}
	local := &entities.Facility{ID: "2", Name: "St. Mary", BedCount: 900, Address: entities.Address{City: "City Hospital District"}}
	typed := &entities.Facility{ID: "3", Name: "Other", BedCount: 1000, FacilityType: "city-hospital"}
	miss := &entities.Facility{ID: "4", Name: "Nothing", BedCount: 1}

	ranked := RankFacilities("city", []*entities.Facility{typed, local, miss, named}, 20)

	require.Len(t, ranked, 3)
	assert.Equal(t, "1", ranked[0].ID)
	assert.Equal(t, "2", ranked[1].ID)
	assert.Equal(t, "3", ranked[2].ID)
}

func TestRankFacilities_BucketTieBreaks(t *testing.T) {
	a := &entities.Facility{ID: "a", Name: "General B", BedCount: 100}
	b := &entities.Facility{ID: "b", Name: "General A", BedCount: 100}
	c := &entities.Facility{ID: "c", Name: "General C", BedCount: 400}

	ranked := RankFacilities("GENERAL", []*entities.Facility{a, b, c}, 0)

	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{ranked[0].ID, ranked[1].ID, ranked[2].ID})
}

func TestRankFacilities_Cap(t *testing.T) {
	var candidates []*entities.Facility
	for i := 0; i < 30; i++ {
		candidates = append(candidates, &entities.Facility{ID: string(rune('A' + i)), Name: "Clinic", BedCount: i})
	}

	assert.Len(t, RankFacilities("clinic", candidates, 20), 20)
	assert.Len(t, RankFacilities("clinic", candidates, 0), 30)
	assert.Empty(t, RankFacilities("  ", candidates, 20))
}

func TestRankPractitioners_BucketPrecedence(t *testing.T) {
	bySpecialty := &entities.Practitioner{ID: "s", Name: "Dr. Okafor", Specialty: "Cardiology", Rating: 5}
	byQualification := &entities.Practitioner{ID: "q", Name: "Dr. Bello", Specialty: "General", Qualifications: []string{"FMCP (Cardio)"}, Rating: 4.9}
	byCity := &entities.Practitioner{ID: "c", Name: "Dr. Adeyemi", City: "Cardiff", Rating: 3.1}
	byName := &entities.Practitioner{ID: "n", Name: "Dr. Cardoso", Rating: 2.0}

	ranked := RankPractitioners("card", []*entities.Practitioner{bySpecialty, byQualification, byCity, byName}, 50)

	require.Len(t, ranked, 4)
	assert.Equal(t, "n", ranked[0].ID)
	assert.Equal(t, "c", ranked[1].ID)
	assert.Equal(t, "s", ranked[2].ID)
	assert.Equal(t, "q", ranked[3].ID)

	for i := range ranked {
		for j := i + 1; j < len(ranked); j++ {
			assert.LessOrEqual(t, PractitionerBucket("card", ranked[i]), PractitionerBucket("card", ranked[j]))
		}
	}
}

func TestFacilityBucket(t *testing.T) {
	f := &entities.Facility{Name: "Sunrise", FacilityType: "clinic", Address: entities.Address{City: "Ikeja", ZipCode: "100271"}}

	assert.Equal(t, BucketName, FacilityBucket("sun", f))
	assert.Equal(t, BucketLocality, FacilityBucket("1002", f))
	assert.Equal(t, BucketSecondary, FacilityBucket("CLINIC", f))
	assert.Equal(t, BucketNone, FacilityBucket("dental", f))
}
