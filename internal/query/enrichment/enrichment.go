// Package enrichment attaches related facility summaries to practitioner results.
package enrichment

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/medilink/backend/internal/domain/entities"
	"github.com/medilink/backend/internal/domain/repositories"
)

// Enricher decorates practitioners with the summary of their linked facility
type Enricher struct {
	summaries repositories.FacilitySummaryReader
}

// NewEnricher creates a new Enricher
func NewEnricher(summaries repositories.FacilitySummaryReader) *Enricher {
	return &Enricher{summaries: summaries}
}

// Practitioners returns cloned practitioners with facility summaries attached. All distinct
// facility ids are resolved in one batch; a facility that cannot be found leaves the summary nil.
func (e *Enricher) Practitioners(ctx context.Context, practitioners []*entities.Practitioner) ([]entities.PractitionerResult, error) {
	ids := distinctFacilityIDs(practitioners)

	byID := map[string]*entities.FacilitySummary{}
	if len(ids) > 0 {
		summaries, err := e.load(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i, id := range ids {
			if summaries[i] != nil {
				byID[id] = summaries[i]
			}
		}
	}

	out := make([]entities.PractitionerResult, len(practitioners))
	for i, p := range practitioners {
		out[i] = entities.PractitionerResult{Practitioner: p.Clone()}
		if p.FacilityID == nil {
			continue
		}
		if s, ok := byID[*p.FacilityID]; ok {
			summary := *s
			out[i].Facility = &summary
		}
	}
	return out, nil
}

// load resolves ids through a loader scoped to this call so the whole key set is one batch.
func (e *Enricher) load(ctx context.Context, ids []string) ([]*entities.FacilitySummary, error) {
	loader := dataloader.NewBatchedLoader(e.batch, dataloader.WithBatchCapacity[string, *entities.FacilitySummary](len(ids)))

	summaries, errs := loader.LoadMany(ctx, ids)()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return summaries, nil
}

func (e *Enricher) batch(ctx context.Context, keys []string) []*dataloader.Result[*entities.FacilitySummary] {
	results := make([]*dataloader.Result[*entities.FacilitySummary], len(keys))

	summaries, err := e.summaries.GetSummariesByIDs(ctx, keys)
	if err != nil {
		for i := range keys {
			results[i] = &dataloader.Result[*entities.FacilitySummary]{Error: err}
		}
		return results
	}

	byID := make(map[string]entities.FacilitySummary, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
	}

	for i, key := range keys {
		if s, ok := byID[key]; ok {
			results[i] = &dataloader.Result[*entities.FacilitySummary]{Data: &s}
		} else {
			results[i] = &dataloader.Result[*entities.FacilitySummary]{}
		}
	}
	return results
}

func distinctFacilityIDs(practitioners []*entities.Practitioner) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, p := range practitioners {
		if p.FacilityID == nil || *p.FacilityID == "" {
			continue
		}
		if _, ok := seen[*p.FacilityID]; ok {
			continue
		}
		seen[*p.FacilityID] = struct{}{}
		ids = append(ids, *p.FacilityID)
	}
	return ids
}
