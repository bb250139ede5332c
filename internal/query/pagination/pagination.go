// Package pagination slices ordered results into pages and pairs them with an independent total.
package pagination

import (
	"context"

	"github.com/medilink/backend/internal/domain/entities"
	apperrors "github.com/medilink/backend/pkg/errors"
)

// CountFunc returns the number of entities matching the same constraints as the listed candidates.
type CountFunc func(ctx context.Context) (int, error)

// Static returns a CountFunc for an already known total
func Static(total int) CountFunc {
	return func(context.Context) (int, error) {
		return total, nil
	}
}

// Paginate returns ordered[offset:offset+limit] with the total from count.
// limit must be positive; a negative offset is treated as zero.
func Paginate[T any](ctx context.Context, ordered []T, limit, offset int, count CountFunc) (*entities.RankedResultSet[T], error) {
	if limit <= 0 {
		return nil, apperrors.NewInvalidParameterError("limit must be positive")
	}
	if offset < 0 {
		offset = 0
	}

	items := []T{}
	if offset < len(ordered) {
		end := min(offset+limit, len(ordered))
		items = append(items, ordered[offset:end]...)
	}

	total := len(ordered)
	if count != nil {
		n, err := count(ctx)
		if err != nil {
			return nil, err
		}
		total = n
	}

	return &entities.RankedResultSet[T]{
		Items:   items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(items) < total,
	}, nil
}

// Window returns how many leading rows of the canonical order a page needs
func Window(limit, offset int) int {
	if offset < 0 {
		offset = 0
	}
	return offset + limit
}
