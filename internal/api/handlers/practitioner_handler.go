package handlers

import (
	"net/http"

	"github.com/medilink/backend/internal/domain/entities"
)

// PractitionerHandler handles practitioner-related HTTP requests
type PractitionerHandler struct {
	service DiscoveryService
	limits  PageLimits
}

// NewPractitionerHandler creates a new practitioner handler
func NewPractitionerHandler(service DiscoveryService, limits PageLimits) *PractitionerHandler {
	return &PractitionerHandler{
		service: service,
		limits:  limits,
	}
}

// ListPractitioners handles GET /api/practitioners
func (h *PractitionerHandler) ListPractitioners(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := entities.NewSearchFilter()
	filter.Category = q.Get("specialty")
	filter.Locality = q.Get("locality")

	var err error
	if filter.Limit, filter.Offset, err = h.limits.parsePage(q); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if filter.MinExperience, err = optionalInt(q, "minExperience"); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if filter.MaxFee, err = optionalFloat(q, "maxFee"); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	page, err := h.service.ListPractitioners(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithPage(w, page)
}

// SearchPractitioners handles GET /api/practitioners/search
func (h *PractitionerHandler) SearchPractitioners(w http.ResponseWriter, r *http.Request) {
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

	page, err := h.service.SearchPractitioners(r.Context(), query, limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithPage(w, page)
}

// GetPractitioner handles GET /api/practitioners/{id}
func (h *PractitionerHandler) GetPractitioner(w http.ResponseWriter, r *http.Request) {
	practitionerID := r.PathValue("id")
	if practitionerID == "" {
		respondWithError(w, http.StatusBadRequest, "practitioner ID is required")
		return
	}

	practitioner, err := h.service.GetPractitioner(r.Context(), practitionerID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, practitioner)
}
