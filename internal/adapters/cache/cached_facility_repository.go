package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/medilink/backend/internal/domain/entities"
	"github.com/medilink/backend/internal/domain/providers"
	"github.com/medilink/backend/internal/domain/repositories"
	"github.com/medilink/backend/internal/infrastructure/observability"
	"github.com/medilink/backend/internal/query/predicate"
	"github.com/rs/zerolog/log"
)

// CachedFacilityRepository wraps a FacilityRepository with read-through caching of
// single facilities and facility summaries. Find and Count always reach the store.
type CachedFacilityRepository struct {
	repo    repositories.FacilityRepository
	cache   providers.CacheProvider
	ttl     int
	metrics *observability.Metrics
}

// NewCachedFacilityRepository creates a cached facility repository.
// ttlSeconds applies to every entry; metrics may be nil.
func NewCachedFacilityRepository(repo repositories.FacilityRepository, cache providers.CacheProvider, ttlSeconds int, metrics *observability.Metrics) *CachedFacilityRepository {
	return &CachedFacilityRepository{
		repo:    repo,
		cache:   cache,
		ttl:     ttlSeconds,
		metrics: metrics,
	}
}

var _ repositories.FacilityRepository = (*CachedFacilityRepository)(nil)

func facilityCacheKey(id string) string {
	return fmt.Sprintf("facility:%s", id)
}

func facilitySummaryCacheKey(id string) string {
	return fmt.Sprintf("facility:summary:%s", id)
}

// GetByID retrieves a facility by ID with caching
func (r *CachedFacilityRepository) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	cacheKey := facilityCacheKey(id)

	cached, err := r.cache.Get(ctx, cacheKey)
	switch {
	case err == nil:
		var facility entities.Facility
		if err := json.Unmarshal(cached, &facility); err == nil {
			observability.RecordCacheHit(ctx, r.metrics, "facility")
			return &facility, nil
		}
		log.Warn().Err(err).Str("facility_id", id).Msg("Failed to unmarshal cached facility")
	case !errors.Is(err, providers.ErrCacheMiss):
		log.Warn().Err(err).Str("facility_id", id).Msg("Cache read failed")
	}
	observability.RecordCacheMiss(ctx, r.metrics, "facility")

	facility, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(facility); err == nil {
		if err := r.cache.Set(ctx, cacheKey, data, r.ttl); err != nil {
			log.Warn().Err(err).Str("facility_id", id).Msg("Failed to cache facility")
		}
	}
	return facility, nil
}

// GetSummariesByIDs serves cached summaries and fetches the rest in one call
func (r *CachedFacilityRepository) GetSummariesByIDs(ctx context.Context, ids []string) ([]entities.FacilitySummary, error) {
	if len(ids) == 0 {
		return []entities.FacilitySummary{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = facilitySummaryCacheKey(id)
	}

	cached, err := r.cache.GetMulti(ctx, keys)
	if err != nil {
		log.Warn().Err(err).Int("keys", len(keys)).Msg("Cache multi-read failed")
		cached = nil
	}

	summaries := make([]entities.FacilitySummary, 0, len(ids))
	missing := make([]string, 0)
	for i, id := range ids {
		if data, ok := cached[keys[i]]; ok {
			var s entities.FacilitySummary
			if err := json.Unmarshal(data, &s); err == nil {
				summaries = append(summaries, s)
				continue
			}
		}
		missing = append(missing, id)
	}

	if len(summaries) > 0 {
		observability.RecordCacheHit(ctx, r.metrics, "facility_summary")
	}
	if len(missing) == 0 {
		return summaries, nil
	}
	observability.RecordCacheMiss(ctx, r.metrics, "facility_summary")

	fetched, err := r.repo.GetSummariesByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}

	items := make(map[string][]byte, len(fetched))
	for _, s := range fetched {
		if data, err := json.Marshal(s); err == nil {
			items[facilitySummaryCacheKey(s.ID)] = data
		}
	}
	if err := r.cache.SetMulti(ctx, items, r.ttl); err != nil {
		log.Warn().Err(err).Int("keys", len(items)).Msg("Failed to cache facility summaries")
	}

	return append(summaries, fetched...), nil
}

// Find delegates to the wrapped repository
func (r *CachedFacilityRepository) Find(ctx context.Context, q repositories.Query) ([]*entities.Facility, error) {
	return r.repo.Find(ctx, q)
}

// Count delegates to the wrapped repository
func (r *CachedFacilityRepository) Count(ctx context.Context, constraints predicate.Set) (int, error) {
	return r.repo.Count(ctx, constraints)
}
