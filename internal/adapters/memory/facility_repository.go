package memory

import (
	"context"
	"slices"

	"github.com/medilink/backend/internal/domain/entities"
	"github.com/medilink/backend/internal/domain/repositories"
	"github.com/medilink/backend/internal/query/predicate"
	apperrors "github.com/medilink/backend/pkg/errors"
)

// FacilityRepository implements repositories.FacilityRepository over a Store
type FacilityRepository struct {
	store *Store
}

// NewFacilityRepository creates a new in-memory facility repository
func NewFacilityRepository(store *Store) *FacilityRepository {
	return &FacilityRepository{store: store}
}

// Create stores a copy of the facility, replacing any facility with the same id
func (r *FacilityRepository) Create(ctx context.Context, facility *entities.Facility) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.putFacility(facility)
	return nil
}

// GetByID retrieves an active facility by ID
func (r *FacilityRepository) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	f, ok := r.store.facilities[id]
	r.store.mu.RUnlock()

	if !ok || !f.IsActive {
		return nil, apperrors.NewNotFoundError("facility not found")
	}
	return &f, nil
}

// GetSummariesByIDs returns summaries for the active facilities among ids
func (r *FacilityRepository) GetSummariesByIDs(ctx context.Context, ids []string) ([]entities.FacilitySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]entities.FacilitySummary, 0, len(ids))
	for _, id := range ids {
		if f, ok := r.store.facilities[id]; ok && f.IsActive {
			out = append(out, f.Summary())
		}
	}
	return out, nil
}

// Find retrieves facilities matching the query
func (r *FacilityRepository) Find(ctx context.Context, q repositories.Query) ([]*entities.Facility, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var matched []*entities.Facility
	for _, f := range r.store.snapshotFacilities() {
		if q.Constraints.Matches(predicate.FacilityRecord{Facility: f}) {
			matched = append(matched, f)
		}
	}

	if len(q.Order) > 0 {
		slices.SortStableFunc(matched, func(a, b *entities.Facility) int {
			return predicate.Compare(predicate.FacilityRecord{Facility: a}, predicate.FacilityRecord{Facility: b}, q.Order)
		})
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

// Count counts facilities matching the constraints
func (r *FacilityRepository) Count(ctx context.Context, constraints predicate.Set) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	n := 0
	for _, f := range r.store.facilities {
		if constraints.Matches(predicate.FacilityRecord{Facility: &f}) {
			n++
		}
	}
	return n, nil
}
