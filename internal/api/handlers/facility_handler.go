package handlers

import (
	"net/http"

	"github.com/medilink/backend/internal/domain/entities"
)

// FacilityHandler handles facility-related HTTP requests
type FacilityHandler struct {
	service DiscoveryService
	limits  PageLimits
}

// NewFacilityHandler creates a new facility handler
func NewFacilityHandler(service DiscoveryService, limits PageLimits) *FacilityHandler {
	return &FacilityHandler{
		service: service,
		limits:  limits,
	}
}

// ListFacilities handles GET /api/facilities
func (h *FacilityHandler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := entities.NewSearchFilter()
	filter.Category = q.Get("type")
	filter.Locality = q.Get("locality")

	var err error
	if filter.Limit, filter.Offset, err = h.limits.parsePage(q); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if filter.ProgramEligible, err = optionalBool(q, "eligible"); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if filter.Center, err = parseCenter(q); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if filter.RadiusKm, err = optionalFloat(q, "radiusKm"); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	page, err := h.service.ListFacilities(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithPage(w, page)
}

// SearchFacilities handles GET /api/facilities/search
func (h *FacilityHandler) SearchFacilities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query, err := parseSearchQuery(q)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	limit, err := h.limits.parseSearchLimit(q)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	page, err := h.service.SearchFacilities(r.Context(), query, limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithPage(w, page)
}

// GetFacility handles GET /api/facilities/{id}
func (h *FacilityHandler) GetFacility(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("id")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	facility, err := h.service.GetFacility(r.Context(), facilityID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, facility)
}

// ListFacilityPractitioners handles GET /api/facilities/{id}/practitioners
func (h *FacilityHandler) ListFacilityPractitioners(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("id")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	filter := entities.NewSearchFilter()
	var err error
	if filter.Limit, filter.Offset, err = h.limits.parsePage(r.URL.Query()); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	page, err := h.service.ListFacilityPractitioners(r.Context(), facilityID, filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithPage(w, page)
}
