package memory

import (
	"context"
	"slices"

	"github.com/medilink/backend/internal/domain/entities"
	"github.com/medilink/backend/internal/domain/repositories"
	"github.com/medilink/backend/internal/query/predicate"
	apperrors "github.com/medilink/backend/pkg/errors"
)

// PractitionerRepository implements repositories.PractitionerRepository over a Store
type PractitionerRepository struct {
	store *Store
}

// NewPractitionerRepository creates a new in-memory practitioner repository
func NewPractitionerRepository(store *Store) *PractitionerRepository {
	return &PractitionerRepository{store: store}
}

// Create stores a copy of the practitioner, replacing any practitioner with the same id
func (r *PractitionerRepository) Create(ctx context.Context, practitioner *entities.Practitioner) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.putPractitioner(practitioner)
	return nil
}

// GetByID retrieves an active practitioner by ID
func (r *PractitionerRepository) GetByID(ctx context.Context, id string) (*entities.Practitioner, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	p, ok := r.store.practitioners[id]
	r.store.mu.RUnlock()

	if !ok || !p.IsActive {
		return nil, apperrors.NewNotFoundError("practitioner not found")
	}
	out := p.Clone()
	return &out, nil
}

// Find retrieves practitioners matching the query
func (r *PractitionerRepository) Find(ctx context.Context, q repositories.Query) ([]*entities.Practitioner, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var matched []*entities.Practitioner
	for _, p := range r.store.snapshotPractitioners() {
		if q.Constraints.Matches(predicate.PractitionerRecord{Practitioner: p}) {
			matched = append(matched, p)
		}
	}

	if len(q.Order) > 0 {
		slices.SortStableFunc(matched, func(a, b *entities.Practitioner) int {
			return predicate.Compare(predicate.PractitionerRecord{Practitioner: a}, predicate.PractitionerRecord{Practitioner: b}, q.Order)
		})
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

// Count counts practitioners matching the constraints
func (r *PractitionerRepository) Count(ctx context.Context, constraints predicate.Set) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	n := 0
	for _, p := range r.store.practitioners {
		if constraints.Matches(predicate.PractitionerRecord{Practitioner: &p}) {
			n++
		}
	}
	return n, nil
}
