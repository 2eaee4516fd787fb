package handlers

import (
	"net/http"
	"time"

	"github.com/karthikvn/clinicq/internal/queue"
	"github.com/karthikvn/clinicq/pkg/logging"
)

// CrowdHandler serves the public congestion indicator.
type CrowdHandler struct {
	crowd  *queue.CrowdService
	logger *logging.Logger
}

// NewCrowdHandler creates a crowd handler.
func NewCrowdHandler(crowd *queue.CrowdService, logger *logging.Logger) *CrowdHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CrowdHandler{crowd: crowd, logger: logger}
}

// Status returns today's facility-wide crowd status.
// GET /api/crowd
func (h *CrowdHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.crowd.Status(r.Context(), time.Now())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, status)
}
