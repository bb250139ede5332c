package resilience

import (
	"context"

	"github.com/medilink/backend/internal/domain/entities"
	"github.com/medilink/backend/internal/domain/repositories"
	"github.com/medilink/backend/internal/query/predicate"
)

// FacilityRepository guards every facility store call with a breaker
type FacilityRepository struct {
	repo    repositories.FacilityRepository
	breaker *Breaker
}

// NewFacilityRepository wraps repo with breaker
func NewFacilityRepository(repo repositories.FacilityRepository, breaker *Breaker) *FacilityRepository {
	return &FacilityRepository{repo: repo, breaker: breaker}
}

var _ repositories.FacilityRepository = (*FacilityRepository)(nil)

func (r *FacilityRepository) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	return execute(ctx, r.breaker, func() (*entities.Facility, error) {
		return r.repo.GetByID(ctx, id)
	})
}

func (r *FacilityRepository) GetSummariesByIDs(ctx context.Context, ids []string) ([]entities.FacilitySummary, error) {
	return execute(ctx, r.breaker, func() ([]entities.FacilitySummary, error) {
		return r.repo.GetSummariesByIDs(ctx, ids)
	})
}

func (r *FacilityRepository) Find(ctx context.Context, q repositories.Query) ([]*entities.Facility, error) {
	return execute(ctx, r.breaker, func() ([]*entities.Facility, error) {
		return r.repo.Find(ctx, q)
	})
}

func (r *FacilityRepository) Count(ctx context.Context, constraints predicate.Set) (int, error) {
	return execute(ctx, r.breaker, func() (int, error) {
		return r.repo.Count(ctx, constraints)
	})
}

// PractitionerRepository guards every practitioner store call with a breaker
type PractitionerRepository struct {
	repo    repositories.PractitionerRepository
	breaker *Breaker
}

// NewPractitionerRepository wraps repo with breaker
func NewPractitionerRepository(repo repositories.PractitionerRepository, breaker *Breaker) *PractitionerRepository {
	return &PractitionerRepository{repo: repo, breaker: breaker}
}

var _ repositories.PractitionerRepository = (*PractitionerRepository)(nil)

func (r *PractitionerRepository) GetByID(ctx context.Context, id string) (*entities.Practitioner, error) {
	return execute(ctx, r.breaker, func() (*entities.Practitioner, error) {
		return r.repo.GetByID(ctx, id)
	})
}

func (r *PractitionerRepository) Find(ctx context.Context, q repositories.Query) ([]*entities.Practitioner, error) {
	return execute(ctx, r.breaker, func() ([]*entities.Practitioner, error) {
		return r.repo.Find(ctx, q)
	})
}

func (r *PractitionerRepository) Count(ctx context.Context, constraints predicate.Set) (int, error) {
	return execute(ctx, r.breaker, func() (int, error) {
		return r.repo.Count(ctx, constraints)
	})
}
