// Package ranking orders discovery candidates by distance or by textual relevance.
package ranking

import (
	"cmp"
	"slices"

	"github.com/medilink/backend/internal/domain/entities"
)

// ProximityRanker orders facilities by great-circle distance from a center.
type ProximityRanker struct {
	// StrictRadius drops candidates farther than the radius. Without it, candidates that
	// only passed the square bounding-box pre-filter are kept.
	StrictRadius bool
}

// Rank computes each candidate's distance, orders ascending by distance with ties broken by
// larger bed count then id, and truncates to limit. A limit <= 0 keeps every candidate.
func (r ProximityRanker) Rank(center entities.GeoPoint, radiusKm float64, candidates []*entities.Facility, limit int) []entities.FacilityResult {
	type scored struct {
		facility *entities.Facility
		distance float64
	}

	ranked := make([]scored, 0, len(candidates))
	for _, f := range candidates {
		d := center.DistanceTo(f.Location)
		if r.StrictRadius && d > radiusKm {
			continue
		}
		ranked = append(ranked, scored{facility: f, distance: d})
	}

	slices.SortFunc(ranked, func(a, b scored) int {
		if c := cmp.Compare(a.distance, b.distance); c != 0 {
			return c
		}
		if c := cmp.Compare(b.facility.BedCount, a.facility.BedCount); c != 0 {
			return c
		}
		return cmp.Compare(a.facility.ID, b.facility.ID)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]entities.FacilityResult, len(ranked))
	for i, s := range ranked {
		out[i] = entities.NewFacilityResult(s.facility, &s.distance)
	}
	return out
}
