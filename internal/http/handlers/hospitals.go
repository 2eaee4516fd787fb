package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/karthikvn/clinicq/internal/directory"
	"github.com/karthikvn/clinicq/pkg/logging"
)

// HospitalsHandler serves the health-centre directory lookups used by
// the registration flow.
type HospitalsHandler struct {
	repo   directory.HospitalRepository
	logger *logging.Logger
}

// NewHospitalsHandler creates a hospitals handler.
func NewHospitalsHandler(repo directory.HospitalRepository, logger *logging.Logger) *HospitalsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &HospitalsHandler{repo: repo, logger: logger}
}

// Routes returns the hospital directory routes.
func (h *HospitalsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Search)
	r.Get("/states", h.States)
	r.Get("/districts", h.Districts)
	return r
}

// Search filters hospitals by state, district and name prefix.
// GET /api/hospitals?state=Kerala&district=Ernakulam&q=general&government=true
func (h *HospitalsHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := directory.HospitalQuery{
		NamePrefix:     r.URL.Query().Get("q"),
		State:          r.URL.Query().Get("state"),
		District:       r.URL.Query().Get("district"),
		GovernmentOnly: r.URL.Query().Get("government") == "true",
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		q.Limit = n
	}

	hospitals, err := h.repo.Search(r.Context(), q)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if hospitals == nil {
		hospitals = []*directory.Hospital{}
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"hospitals": hospitals,
		"count":     len(hospitals),
	})
}

// States lists the states present in the directory.
// GET /api/hospitals/states?government=true
func (h *HospitalsHandler) States(w http.ResponseWriter, r *http.Request) {
	states, err := h.repo.States(r.Context(), r.URL.Query().Get("government") == "true")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if states == nil {
		states = []string{}
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{"states": states})
}

// Districts lists the districts in a state.
// GET /api/hospitals/districts?state=Kerala&government=true
func (h *HospitalsHandler) Districts(w http.ResponseWriter, r *http.Request) {
	districts, err := h.repo.Districts(r.Context(),
		r.URL.Query().Get("state"),
		r.URL.Query().Get("government") == "true")
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if districts == nil {
		districts = []string{}
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{"districts": districts})
}
