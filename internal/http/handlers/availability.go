package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/karthikvn/clinicq/internal/scheduling"
	"github.com/karthikvn/clinicq/pkg/logging"
)

// AvailabilityHandler lets doctors manage their availability and admins
// override it.
type AvailabilityHandler struct {
	service *scheduling.Service
	logger  *logging.Logger
}

// NewAvailabilityHandler creates an availability handler.
func NewAvailabilityHandler(service *scheduling.Service, logger *logging.Logger) *AvailabilityHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AvailabilityHandler{service: service, logger: logger}
}

type setAvailabilityRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// SetSelf updates a doctor's own availability.
// PUT /api/doctors/{doctorID}/availability
func (h *AvailabilityHandler) SetSelf(w http.ResponseWriter, r *http.Request) {
	h.set(w, r, false)
}

// SetByAdmin overrides a doctor's availability on their behalf. The
// doctor is notified about the change.
// PUT /admin/doctors/{doctorID}/availability
func (h *AvailabilityHandler) SetByAdmin(w http.ResponseWriter, r *http.Request) {
	h.set(w, r, true)
}

func (h *AvailabilityHandler) set(w http.ResponseWriter, r *http.Request, byAdmin bool) {
	doctorID := chi.URLParam(r, "doctorID")
	var req setAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	doctor, err := h.service.SetAvailability(r.Context(), doctorID, req.Status, req.Note, byAdmin)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, doctor)
}
