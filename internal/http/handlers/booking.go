package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/karthikvn/clinicq/internal/scheduling"
	"github.com/karthikvn/clinicq/pkg/logging"
)

// BookingHandler exposes the booking pipeline and queue views over HTTP.
type BookingHandler struct {
	service *scheduling.Service
	logger  *logging.Logger
}

// NewBookingHandler creates a booking handler.
func NewBookingHandler(service *scheduling.Service, logger *logging.Logger) *BookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{service: service, logger: logger}
}

// Routes returns the booking routes.
func (h *BookingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/appointments", h.Book)
	r.Patch("/appointments/{appointmentID}/status", h.UpdateStatus)
	r.Get("/patients/{patientID}/status", h.PatientStatus)
	r.Get("/doctors/{doctorID}/queue", h.DoctorQueue)
	return r
}

// Book creates an appointment for a patient.
// POST /api/appointments
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req scheduling.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.PatientID == "" {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "patient_id required"})
		return
	}

	res, err := h.service.Book(r.Context(), req)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, res)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves an appointment through its lifecycle.
// PATCH /api/appointments/{appointmentID}/status
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	appointmentID := chi.URLParam(r, "appointmentID")
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	appt, err := h.service.UpdateStatus(r.Context(), appointmentID, req.Status)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, appt)
}

// PatientStatus reports the patient's latest appointment with live
// position and ETA.
// GET /api/patients/{patientID}/status
func (h *BookingHandler) PatientStatus(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	status, err := h.service.PatientStatus(r.Context(), patientID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, status)
}

// DoctorQueue returns the doctor's ordered active queue for today.
// GET /api/doctors/{doctorID}/queue
func (h *BookingHandler) DoctorQueue(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")

	queue, err := h.service.DoctorQueue(r.Context(), doctorID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"doctor_id": doctorID,
		"queue":     queue,
		"length":    len(queue),
	})
}
