package ranking

import (
	"slices"
	"strings"

	"github.com/medilink/backend/internal/domain/entities"
	"github.com/medilink/backend/internal/query/predicate"
)

// Bucket is a relevance tier; lower buckets rank first.
type Bucket int

const (
	BucketNone Bucket = iota
	BucketName
	BucketLocality
	BucketSecondary
)

var practitionerRelevanceOrder = []predicate.Order{
	{Field: predicate.FieldRating, Desc: true},
	{Field: predicate.FieldName},
	{Field: predicate.FieldID},
}

// FacilityBucket returns the first tier in which query matches the facility
func FacilityBucket(query string, f *entities.Facility) Bucket {
	return bucketOf(query, predicate.FacilityRecord{Facility: f}, predicate.FacilityLocalityFields, predicate.FacilitySecondaryFields)
}

// PractitionerBucket returns the first tier in which query matches the practitioner
func PractitionerBucket(query string, p *entities.Practitioner) Bucket {
	return bucketOf(query, predicate.PractitionerRecord{Practitioner: p}, predicate.PractitionerLocalityFields, predicate.PractitionerSecondaryFields)
}

// RankFacilities keeps facilities matching query, ordered by bucket, then bed count
// descending, name and id. A limit <= 0 keeps every match.
func RankFacilities(query string, candidates []*entities.Facility, limit int) []*entities.Facility {
	return rank(query, candidates, limit,
		func(f *entities.Facility) predicate.Record { return predicate.FacilityRecord{Facility: f} },
		predicate.FacilityLocalityFields, predicate.FacilitySecondaryFields, predicate.FacilityOrder)
}

// RankPractitioners keeps practitioners matching query, ordered by bucket, then rating
// descending, name and id. A limit <= 0 keeps every match.
func RankPractitioners(query string, candidates []*entities.Practitioner, limit int) []*entities.Practitioner {
	return rank(query, candidates, limit,
		func(p *entities.Practitioner) predicate.Record { return predicate.PractitionerRecord{Practitioner: p} },
		predicate.PractitionerLocalityFields, predicate.PractitionerSecondaryFields, practitionerRelevanceOrder)
}

func rank[T any](query string, candidates []T, limit int, record func(T) predicate.Record,
	locality, secondary []predicate.Field, tiebreak []predicate.Order) []T {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	type scored struct {
		item   T
		rec    predicate.Record
		bucket Bucket
	}

	matched := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		rec := record(c)
		if b := bucketOf(query, rec, locality, secondary); b != BucketNone {
			matched = append(matched, scored{item: c, rec: rec, bucket: b})
		}
	}

	slices.SortStableFunc(matched, func(a, b scored) int {
		if a.bucket != b.bucket {
			return int(a.bucket) - int(b.bucket)
		}
		return predicate.Compare(a.rec, b.rec, tiebreak)
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]T, len(matched))
	for i, s := range matched {
		out[i] = s.item
	}
	return out
}

func bucketOf(query string, rec predicate.Record, locality, secondary []predicate.Field) Bucket {
	switch {
	case predicate.MatchesAny(rec, []predicate.Field{predicate.FieldName}, query):
		return BucketName
	case predicate.MatchesAny(rec, locality, query):
		return BucketLocality
	case predicate.MatchesAny(rec, secondary, query):
		return BucketSecondary
	}
	return BucketNone
}
