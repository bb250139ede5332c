package repositories

import (
	"context"

	"github.com/medilink/backend/internal/domain/entities"
	"github.com/medilink/backend/internal/query/predicate"
)

// Query selects rows matching Constraints in the given Order.
// A Limit <= 0 returns every match.
type Query struct {
	Constraints predicate.Set
	Order       []predicate.Order
	Limit       int
}

// FacilitySummaryReader resolves facility summaries in a single round trip
type FacilitySummaryReader interface {
	// GetSummariesByIDs returns summaries for the active facilities among ids; unknown ids are skipped
	GetSummariesByIDs(ctx context.Context, ids []string) ([]entities.FacilitySummary, error)
}

// FacilityRepository defines the read operations the discovery engine needs from facility storage
type FacilityRepository interface {
	FacilitySummaryReader

	// GetByID retrieves an active facility by ID
	GetByID(ctx context.Context, id string) (*entities.Facility, error)

	// Find retrieves facilities matching the query
	Find(ctx context.Context, q Query) ([]*entities.Facility, error)

	// Count counts facilities matching the constraints
	Count(ctx context.Context, constraints predicate.Set) (int, error)
}

// FacilityWriter persists facilities; used by seeding, never by discovery
type FacilityWriter interface {
	Create(ctx context.Context, facility *entities.Facility) error
}
