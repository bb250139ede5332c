package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/medilink/backend/internal/domain/entities"
	apperrors "github.com/medilink/backend/pkg/errors"
)

// MinQueryLength is the shortest free-text query the search endpoints accept
const MinQueryLength = 2

// PageLimits bounds the page sizes callers may request
type PageLimits struct {
	Default int
	Max     int
}

// DefaultPageLimits returns the stock page limits
func DefaultPageLimits() PageLimits {
	return PageLimits{Default: entities.DefaultPageSize, Max: 100}
}

// parsePage reads limit and offset. Limits above Max are clamped; the engine rejects non-positive ones.
func (p PageLimits) parsePage(q url.Values) (limit, offset int, err error) {
	limit = p.Default
	if raw := q.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return 0, 0, apperrors.NewInvalidParameterError(fmt.Sprintf("limit must be an integer, got %q", raw))
		}
	}
	if p.Max > 0 && limit > p.Max {
		limit = p.Max
	}
	if raw := q.Get("offset"); raw != "" {
		if offset, err = strconv.Atoi(raw); err != nil {
			return 0, 0, apperrors.NewInvalidParameterError(fmt.Sprintf("offset must be an integer, got %q", raw))
		}
	}
	return limit, offset, nil
}

// parseSearchLimit reads limit for the search endpoints. An absent limit yields 0 so the
// engine applies its own search cap.
func (p PageLimits) parseSearchLimit(q url.Values) (int, error) {
	raw := q.Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewInvalidParameterError(fmt.Sprintf("limit must be an integer, got %q", raw))
	}
	if p.Max > 0 && limit > p.Max {
		limit = p.Max
	}
	return limit, nil
}

func parseSearchQuery(q url.Values) (string, error) {
	query := strings.TrimSpace(q.Get("q"))
	if len([]rune(query)) < MinQueryLength {
		return "", apperrors.NewInvalidParameterError(fmt.Sprintf("q must be at least %d characters", MinQueryLength))
	}
	return query, nil
}

func optionalInt(q url.Values, name string) (*int, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.NewInvalidParameterError(fmt.Sprintf("%s must be an integer, got %q", name, raw))
	}
	return &v, nil
}

func optionalFloat(q url.Values, name string) (*float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewInvalidParameterError(fmt.Sprintf("%s must be a number, got %q", name, raw))
	}
	return &v, nil
}

func optionalBool(q url.Values, name string) (*bool, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.NewInvalidParameterError(fmt.Sprintf("%s must be true or false, got %q", name, raw))
	}
	return &v, nil
}

// parseCenter reads lat and lng; both or neither must be present
func parseCenter(q url.Values) (*entities.GeoPoint, error) {
	lat, err := optionalFloat(q, "lat")
	if err != nil {
		return nil, err
	}
	lng, err := optionalFloat(q, "lng")
	if err != nil {
		return nil, err
	}
	if lat == nil && lng == nil {
		return nil, nil
	}
	if lat == nil || lng == nil {
		return nil, apperrors.NewInvalidParameterError("lat and lng must be given together")
	}
	center := entities.GeoPoint{Latitude: *lat, Longitude: *lng}
	if err := center.Validate(); err != nil {
		return nil, apperrors.NewInvalidParameterError(err.Error())
	}
	return &center, nil
}
