package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/karthikvn/clinicq/internal/appointments"
	"github.com/karthikvn/clinicq/internal/directory"
	"github.com/karthikvn/clinicq/internal/queue"
	"github.com/karthikvn/clinicq/pkg/logging"
)

func writeJSON(w http.ResponseWriter, logger *logging.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeDomainError translates sentinel errors from the core packages
// into HTTP statuses. Anything unrecognized is a 500 with a generic
// body so internals never leak.
func writeDomainError(w http.ResponseWriter, logger *logging.Logger, err error) {
	switch {
	case errors.Is(err, directory.ErrNotFound),
		errors.Is(err, appointments.ErrNotFound):
		writeJSON(w, logger, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, directory.ErrNotADoctor):
		writeJSON(w, logger, http.StatusNotFound, errorResponse{Error: "doctor not found"})
	case errors.Is(err, appointments.ErrInvalidPriority):
		writeJSON(w, logger, http.StatusBadRequest, errorResponse{Error: "invalid priority"})
	case errors.Is(err, appointments.ErrInvalidStatus):
		writeJSON(w, logger, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, directory.ErrInvalidAvailability):
		writeJSON(w, logger, http.StatusBadRequest, errorResponse{Error: "invalid availability status"})
	case errors.Is(err, queue.ErrNoDoctorAvailable):
		writeJSON(w, logger, http.StatusConflict, errorResponse{Error: "no doctor available"})
	case errors.Is(err, appointments.ErrStorageUnavailable):
		logger.Error("storage unavailable", "error", err)
		writeJSON(w, logger, http.StatusServiceUnavailable, errorResponse{Error: "storage unavailable"})
	default:
		logger.Error("request failed", "error", err)
		writeJSON(w, logger, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
