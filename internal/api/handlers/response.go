package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/medilink/backend/internal/domain/entities"
	"github.com/medilink/backend/internal/infrastructure/observability"
	apperrors "github.com/medilink/backend/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DiscoveryService is the engine surface the HTTP handlers depend on
type DiscoveryService interface {
	ListFacilities(ctx context.Context, filter entities.SearchFilter) (*entities.RankedResultSet[entities.FacilityResult], error)
	SearchFacilities(ctx context.Context, query string, limit int) (*entities.RankedResultSet[entities.FacilityResult], error)
	GetFacility(ctx context.Context, id string) (*entities.FacilityResult, error)
	ListPractitioners(ctx context.Context, filter entities.SearchFilter) (*entities.RankedResultSet[entities.PractitionerResult], error)
	ListFacilityPractitioners(ctx context.Context, facilityID string, filter entities.SearchFilter) (*entities.RankedResultSet[entities.PractitionerResult], error)
	SearchPractitioners(ctx context.Context, query string, limit int) (*entities.RankedResultSet[entities.PractitionerResult], error)
	GetPractitioner(ctx context.Context, id string) (*entities.PractitionerResult, error)
}

// Pagination describes the page returned in a list envelope
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// Envelope is the body of every successful response
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ErrorResponse is the body of every failed response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondWithPage[T any](w http.ResponseWriter, page *entities.RankedResultSet[T]) {
	respondWithJSON(w, http.StatusOK, Envelope{
		Success: true,
		Data:    page.Items,
		Pagination: &Pagination{
			Total:   page.Total,
			Limit:   page.Limit,
			Offset:  page.Offset,
			HasMore: page.HasMore,
		},
	})
}

func respondWithData(w http.ResponseWriter, data interface{}) {
	respondWithJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, ErrorResponse{Success: false, Message: message})
}

// respondWithAppError maps an engine error to its HTTP status. Internal details are logged, not returned.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeInvalidParameter:
		respondWithError(w, http.StatusBadRequest, messageOf(err))
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, messageOf(err))
	case apperrors.ErrorTypeStoreUnavailable:
		observability.LoggerFromContext(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("Store unavailable")
		respondWithError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func messageOf(err error) string {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}
