package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/medilink/backend/internal/domain/entities"
	"github.com/medilink/backend/internal/domain/repositories"
	"github.com/medilink/backend/internal/infrastructure/observability"
	"github.com/medilink/backend/internal/query/enrichment"
	"github.com/medilink/backend/internal/query/pagination"
	"github.com/medilink/backend/internal/query/predicate"
	"github.com/medilink/backend/internal/query/ranking"
	apperrors "github.com/medilink/backend/pkg/errors"
)

// Options tunes the discovery engine
type Options struct {
	StrictRadius            bool
	FacilitySearchLimit     int
	PractitionerSearchLimit int
	// StoreTimeout bounds every individual store call; zero leaves only the caller's deadline.
	StoreTimeout time.Duration
}

// DefaultOptions returns the engine defaults
func DefaultOptions() Options {
	return Options{
		FacilitySearchLimit:     20,
		PractitionerSearchLimit: 50,
		StoreTimeout:            3 * time.Second,
	}
}

// DiscoveryService answers read-only facility and practitioner discovery queries.
// It holds no mutable state and is safe for concurrent use.
type DiscoveryService struct {
	facilities    repositories.FacilityRepository
	practitioners repositories.PractitionerRepository
	enricher      *enrichment.Enricher
	proximity     ranking.ProximityRanker
	opts          Options
}

// NewDiscoveryService creates a new discovery service
func NewDiscoveryService(
	facilities repositories.FacilityRepository,
	practitioners repositories.PractitionerRepository,
	opts Options,
) *DiscoveryService {
	defaults := DefaultOptions()
	if opts.FacilitySearchLimit <= 0 {
		opts.FacilitySearchLimit = defaults.FacilitySearchLimit
	}
	if opts.PractitionerSearchLimit <= 0 {
		opts.PractitionerSearchLimit = defaults.PractitionerSearchLimit
	}
	return &DiscoveryService{
		facilities:    facilities,
		practitioners: practitioners,
		enricher:      enrichment.NewEnricher(facilities),
		proximity:     ranking.ProximityRanker{StrictRadius: opts.StrictRadius},
		opts:          opts,
	}
}

// ListFacilities returns one page of active facilities matching filter. With a center and
// radius the page is ordered by distance; with a query, by relevance; otherwise by bed count.
func (s *DiscoveryService) ListFacilities(ctx context.Context, filter entities.SearchFilter) (*entities.RankedResultSet[entities.FacilityResult], error) {
	const op = "ListFacilities"

	if err := validatePage(filter); err != nil {
		return nil, err.WithContext(op, "")
	}
	if filter.Center != nil || filter.RadiusKm != nil {
		if err := validateProximity(filter.Center, filter.RadiusKm); err != nil {
			return nil, err.WithContext(op, "")
		}
	}

	set := predicate.Compile(filter, predicate.Facilities)

	if filter.HasProximity() {
		candidates, err := s.findFacilities(ctx, repositories.Query{Constraints: set})
		if err != nil {
			return nil, wrapStoreError(op, set, err)
		}
		ranked := s.proximity.Rank(*filter.Center, *filter.RadiusKm, candidates, 0)
		page, err := pagination.Paginate(ctx, ranked, filter.Limit, filter.Offset, pagination.Static(len(ranked)))
		if err != nil {
			return nil, wrapStoreError(op, set, err)
		}
		return page, nil
	}

	var ordered []*entities.Facility
	var err error
	if query := strings.TrimSpace(filter.Query); query != "" {
		ordered, err = s.findFacilities(ctx, repositories.Query{Constraints: set})
		ordered = ranking.RankFacilities(query, ordered, pagination.Window(filter.Limit, filter.Offset))
	} else {
		ordered, err = s.findFacilities(ctx, repositories.Query{
			Constraints: set,
			Order:       predicate.FacilityOrder,
			Limit:       pagination.Window(filter.Limit, filter.Offset),
		})
	}
	if err != nil {
		return nil, wrapStoreError(op, set, err)
	}

	page, err := pagination.Paginate(ctx, toFacilityResults(ordered), filter.Limit, filter.Offset, s.countFacilities(set))
	if err != nil {
		return nil, wrapStoreError(op, set, err)
	}
	return page, nil
}

// FindFacilitiesByCity lists active facilities whose locality contains city, largest first
func (s *DiscoveryService) FindFacilitiesByCity(ctx context.Context, city string, limit int) (*entities.RankedResultSet[entities.FacilityResult], error) {
	if strings.TrimSpace(city) == "" {
		return nil, apperrors.NewInvalidParameterError("city is required").WithContext("FindFacilitiesByCity", "")
	}
	filter := entities.NewSearchFilter()
	filter.Locality = city
	filter.Limit = limit
	return s.ListFacilities(ctx, filter)
}

// FindNearby returns up to limit active facilities around center ordered by distance
func (s *DiscoveryService) FindNearby(ctx context.Context, center entities.GeoPoint, radiusKm float64, limit int) ([]entities.FacilityResult, error) {
	const op = "FindNearby"

	if err := validateProximity(&center, &radiusKm); err != nil {
		return nil, err.WithContext(op, "")
	}
	if limit <= 0 {
		return nil, apperrors.NewInvalidParameterError("limit must be positive").WithContext(op, "")
	}

	filter := entities.SearchFilter{Center: &center, RadiusKm: &radiusKm}
	set := predicate.Compile(filter, predicate.Facilities)

	candidates, err := s.findFacilities(ctx, repositories.Query{Constraints: set})
	if err != nil {
		return nil, wrapStoreError(op, set, err)
	}
	return s.proximity.Rank(center, radiusKm, candidates, limit), nil
}

// SearchFacilities ranks active facilities by where query matches: name, then locality, then type.
// A limit <= 0 or above the configured cap uses the cap.
func (s *DiscoveryService) SearchFacilities(ctx context.Context, query string, limit int) (*entities.RankedResultSet[entities.FacilityResult], error) {
	const op = "SearchFacilities"

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewInvalidParameterError("query is required").WithContext(op, "")
	}
	limit = capLimit(limit, s.opts.FacilitySearchLimit)

	set := predicate.Compile(entities.SearchFilter{Query: query}, predicate.Facilities)
	candidates, err := s.findFacilities(ctx, repositories.Query{Constraints: set})
	if err != nil {
		return nil, wrapStoreError(op, set, err)
	}

	ranked := ranking.RankFacilities(query, candidates, limit)
	page, err := pagination.Paginate(ctx, toFacilityResults(ranked), limit, 0, s.countFacilities(set))
	if err != nil {
		return nil, wrapStoreError(op, set, err)
	}
	return page, nil
}

// GetFacility returns an active facility by id
func (s *DiscoveryService) GetFacility(ctx context.Context, id string) (*entities.FacilityResult, error) {
	const op = "GetFacility"

	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewInvalidParameterError("facility id is required").WithContext(op, "")
	}

	f, err := storeCall(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*entities.Facility, error) {
		return s.facilities.GetByID(ctx, id)
	})
	if err != nil {
		return nil, wrapStoreError(op, idSet(id), err)
	}
	result := entities.NewFacilityResult(f, nil)
	return &result, nil
}

// ListPractitioners returns one page of active practitioners matching filter, with their
// facility summaries attached. With a query the page is ordered by relevance, otherwise by rating.
func (s *DiscoveryService) ListPractitioners(ctx context.Context, filter entities.SearchFilter) (*entities.RankedResultSet[entities.PractitionerResult], error) {
	const op = "ListPractitioners"

	if err := validatePage(filter); err != nil {
		return nil, err.WithContext(op, "")
	}
	if err := validatePractitionerFilter(filter); err != nil {
		return nil, err.WithContext(op, "")
	}

	set := predicate.Compile(filter, predicate.Practitioners)

	var ordered []*entities.Practitioner
	var err error
	if query := strings.TrimSpace(filter.Query); query != "" {
		ordered, err = s.findPractitioners(ctx, repositories.Query{Constraints: set})
		ordered = ranking.RankPractitioners(query, ordered, pagination.Window(filter.Limit, filter.Offset))
	} else {
		ordered, err = s.findPractitioners(ctx, repositories.Query{
			Constraints: set,
			Order:       predicate.PractitionerOrder,
			Limit:       pagination.Window(filter.Limit, filter.Offset),
		})
	}
	if err != nil {
		return nil, wrapStoreError(op, set, err)
	}

	page, err := pagination.Paginate(ctx, ordered, filter.Limit, filter.Offset, s.countPractitioners(set))
	if err != nil {
		return nil, wrapStoreError(op, set, err)
	}

	items, err := s.enrich(ctx, page.Items)
	if err != nil {
		return nil, wrapStoreError(op, set, err)
	}
	return &entities.RankedResultSet[entities.PractitionerResult]{
		Items:   items,
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore,
	}, nil
}

// ListFacilityPractitioners lists the active practitioners linked to an active facility
func (s *DiscoveryService) ListFacilityPractitioners(ctx context.Context, facilityID string, filter entities.SearchFilter) (*entities.RankedResultSet[entities.PractitionerResult], error) {
	if _, err := s.GetFacility(ctx, facilityID); err != nil {
		return nil, err
	}
	filter.FacilityID = facilityID
	return s.ListPractitioners(ctx, filter)
}

// SearchPractitioners ranks active practitioners by where query matches: name, then locality,
// then specialty or qualifications. A limit <= 0 or above the configured cap uses the cap.
func (s *DiscoveryService) SearchPractitioners(ctx context.Context, query string, limit int) (*entities.RankedResultSet[entities.PractitionerResult], error) {
	const op = "SearchPractitioners"

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewInvalidParameterError("query is required").WithContext(op, "")
	}
	limit = capLimit(limit, s.opts.PractitionerSearchLimit)

	set := predicate.Compile(entities.SearchFilter{Query: query}, predicate.Practitioners)
	candidates, err := s.findPractitioners(ctx, repositories.Query{Constraints: set})
	if err != nil {
		return nil, wrapStoreError(op, set, err)
	}

	ranked := ranking.RankPractitioners(query, candidates, limit)
	page, err := pagination.Paginate(ctx, ranked, limit, 0, s.countPractitioners(set))
	if err != nil {
		return nil, wrapStoreError(op, set, err)
	}

	items, err := s.enrich(ctx, page.Items)
	if err != nil {
		return nil, wrapStoreError(op, set, err)
	}
	return &entities.RankedResultSet[entities.PractitionerResult]{
		Items:   items,
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore,
	}, nil
}

// GetPractitioner returns an active practitioner by id with its facility summary attached
func (s *DiscoveryService) GetPractitioner(ctx context.Context, id string) (*entities.PractitionerResult, error) {
	const op = "GetPractitioner"

	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewInvalidParameterError("practitioner id is required").WithContext(op, "")
	}

	p, err := storeCall(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*entities.Practitioner, error) {
		return s.practitioners.GetByID(ctx, id)
	})
	if err != nil {
		return nil, wrapStoreError(op, idSet(id), err)
	}

	items, err := s.enrich(ctx, []*entities.Practitioner{p})
	if err != nil {
		return nil, wrapStoreError(op, idSet(id), err)
	}
	return &items[0], nil
}

func (s *DiscoveryService) findFacilities(ctx context.Context, q repositories.Query) ([]*entities.Facility, error) {
	return storeCall(ctx, s.opts.StoreTimeout, func(ctx context.Context) ([]*entities.Facility, error) {
		return s.facilities.Find(ctx, q)
	})
}

func (s *DiscoveryService) findPractitioners(ctx context.Context, q repositories.Query) ([]*entities.Practitioner, error) {
	return storeCall(ctx, s.opts.StoreTimeout, func(ctx context.Context) ([]*entities.Practitioner, error) {
		return s.practitioners.Find(ctx, q)
	})
}

func (s *DiscoveryService) countFacilities(set predicate.Set) pagination.CountFunc {
	return func(ctx context.Context) (int, error) {
		return storeCall(ctx, s.opts.StoreTimeout, func(ctx context.Context) (int, error) {
			return s.facilities.Count(ctx, set)
		})
	}
}

func (s *DiscoveryService) countPractitioners(set predicate.Set) pagination.CountFunc {
	return func(ctx context.Context) (int, error) {
		return storeCall(ctx, s.opts.StoreTimeout, func(ctx context.Context) (int, error) {
			return s.practitioners.Count(ctx, set)
		})
	}
}

func (s *DiscoveryService) enrich(ctx context.Context, practitioners []*entities.Practitioner) ([]entities.PractitionerResult, error) {
	return storeCall(ctx, s.opts.StoreTimeout, func(ctx context.Context) ([]entities.PractitionerResult, error) {
		return s.enricher.Practitioners(ctx, practitioners)
	})
}

// storeCall runs fn in its own span under a timeout derived from ctx.
func storeCall[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := observability.StartSpan(ctx, "discovery.store")
	defer span.End()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	out, err := fn(ctx)
	observability.RecordError(span, err)
	return out, err
}

// wrapStoreError annotates err with the operation and constraint snapshot. Typed errors keep
// their type; cancellation and deadline errors become STORE_UNAVAILABLE.
func wrapStoreError(op string, set predicate.Set, err error) error {
	snapshot := set.String()
	if appErr, ok := apperrors.As(err); ok {
		return appErr.WithContext(op, snapshot)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.NewStoreUnavailableError("data store did not respond in time", err).WithContext(op, snapshot)
	}
	return apperrors.NewInternalError("data store call failed", err).WithContext(op, snapshot)
}

func validatePage(filter entities.SearchFilter) *apperrors.AppError {
	if filter.Limit <= 0 {
		return apperrors.NewInvalidParameterError("limit must be positive")
	}
	return nil
}

func validateProximity(center *entities.GeoPoint, radiusKm *float64) *apperrors.AppError {
	if center == nil || radiusKm == nil {
		return apperrors.NewInvalidParameterError("center and radius must be given together")
	}
	if err := center.Validate(); err != nil {
		return apperrors.NewInvalidParameterError(err.Error())
	}
	if math.IsNaN(*radiusKm) || math.IsInf(*radiusKm, 0) || *radiusKm <= 0 {
		return apperrors.NewInvalidParameterError("radius must be a positive finite number")
	}
	return nil
}

func validatePractitionerFilter(filter entities.SearchFilter) *apperrors.AppError {
	if filter.MinExperience != nil && *filter.MinExperience < 0 {
		return apperrors.NewInvalidParameterError("minimum experience must not be negative")
	}
	if filter.MaxFee != nil && *filter.MaxFee < 0 {
		return apperrors.NewInvalidParameterError("maximum fee must not be negative")
	}
	return nil
}

func capLimit(limit, ceiling int) int {
	if limit <= 0 || limit > ceiling {
		return ceiling
	}
	return limit
}

func idSet(id string) predicate.Set {
	return predicate.Set{predicate.ExactMatch{Field: predicate.FieldID, Value: id}}
}

func toFacilityResults(facilities []*entities.Facility) []entities.FacilityResult {
	out := make([]entities.FacilityResult, len(facilities))
	for i, f := range facilities {
		out[i] = entities.NewFacilityResult(f, nil)
	}
	return out
}
