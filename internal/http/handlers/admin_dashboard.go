package handlers

import (
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/karthikvn/clinicq/internal/appointments"
	"github.com/karthikvn/clinicq/internal/directory"
	"github.com/karthikvn/clinicq/internal/queue"
	"github.com/karthikvn/clinicq/pkg/logging"
)

// AdminDashboardHandler serves the operational overview for clinic
// staff: today's appointment counts, crowd status, and a snapshot of
// the wait estimates handed out since startup.
type AdminDashboardHandler struct {
	store    appointments.Store
	dir      directory.Repository
	crowd    *queue.CrowdService
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

// NewAdminDashboardHandler creates an admin dashboard handler.
func NewAdminDashboardHandler(
	store appointments.Store,
	dir directory.Repository,
	crowd *queue.CrowdService,
	gatherer prometheus.Gatherer,
	logger *logging.Logger,
) *AdminDashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &AdminDashboardHandler{
		store:    store,
		dir:      dir,
		crowd:    crowd,
		gatherer: gatherer,
		logger:   logger,
	}
}

// DashboardResponse is the admin overview payload.
type DashboardResponse struct {
	Date         string                 `json:"date"`
	Appointments appointments.DayCounts `json:"appointments"`
	Doctors      int                    `json:"doctors"`
	Patients     int                    `json:"patients"`
	Crowd        *queue.CrowdStatus     `json:"crowd,omitempty"`
	WaitSnapshot WaitSnapshot           `json:"wait_snapshot"`
}

// WaitSnapshot summarizes the estimated-wait histogram since process
// start.
type WaitSnapshot struct {
	Total       int64        `json:"total"`
	P50Minutes  float64      `json:"p50_minutes"`
	P90Minutes  float64      `json:"p90_minutes"`
	Buckets     []WaitBucket `json:"buckets,omitempty"`
}

// WaitBucket is one histogram bucket of estimated waits.
type WaitBucket struct {
	LeMinutes float64 `json:"le_minutes"`
	Count     int64   `json:"count"`
}

// Overview returns today's operational summary.
// GET /admin/dashboard
func (h *AdminDashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now()

	counts, err := h.store.CountsForDate(ctx, now)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	doctors, err := h.dir.CountByRole(ctx, directory.RoleDoctor)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	patients, err := h.dir.CountByRole(ctx, directory.RolePatient)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	resp := DashboardResponse{
		Date:         appointments.DateOf(now).Format(time.DateOnly),
		Appointments: counts,
		Doctors:      doctors,
		Patients:     patients,
		WaitSnapshot: snapshotWaitEstimates(h.gatherer),
	}

	if h.crowd != nil {
		status, err := h.crowd.Status(ctx, now)
		if err != nil {
			h.logger.Error("dashboard: crowd status failed", "error", err)
		} else {
			resp.Crowd = status
		}
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}

// snapshotWaitEstimates aggregates the estimated-wait histogram from
// the Prometheus gatherer. Missing or empty metrics return a zero
// snapshot rather than an error; the dashboard stays useful before the
// first booking.
func snapshotWaitEstimates(gatherer prometheus.Gatherer) WaitSnapshot {
	mfs, err := gatherer.Gather()
	if err != nil {
		return WaitSnapshot{}
	}

	var family *dto.MetricFamily
	for _, mf := range mfs {
		if mf != nil && mf.GetName() == "clinicq_queue_estimated_wait_minutes" {
			family = mf
			break
		}
	}
	if family == nil {
		return WaitSnapshot{}
	}

	cumulativeByUpper := map[float64]uint64{}
	var sampleCount uint64
	for _, metric := range family.Metric {
		if metric == nil {
			continue
		}
		hist := metric.GetHistogram()
		if hist == nil {
			continue
		}
		sampleCount += hist.GetSampleCount()
		for _, b := range hist.Bucket {
			if b == nil {
				continue
			}
			cumulativeByUpper[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}
	if sampleCount == 0 || len(cumulativeByUpper) == 0 {
		return WaitSnapshot{}
	}

	uppers := make([]float64, 0, len(cumulativeByUpper))
	for upper := range cumulativeByUpper {
		uppers = append(uppers, upper)
	}
	sort.Float64s(uppers)

	buckets := make([]WaitBucket, 0, len(uppers))
	var prev uint64
	for _, upper := range uppers {
		if math.IsInf(upper, 1) {
			continue
		}
		cum := cumulativeByUpper[upper]
		count := int64(0)
		if cum >= prev {
			count = int64(cum - prev)
		}
		buckets = append(buckets, WaitBucket{LeMinutes: upper, Count: count})
		prev = cum
	}

	return WaitSnapshot{
		Total:      int64(sampleCount),
		P50Minutes: histogramQuantile(0.50, sampleCount, uppers, cumulativeByUpper),
		P90Minutes: histogramQuantile(0.90, sampleCount, uppers, cumulativeByUpper),
		Buckets:    buckets,
	}
}

// histogramQuantile linearly interpolates a quantile from cumulative
// histogram buckets, the same way PromQL's histogram_quantile does.
func histogramQuantile(q float64, total uint64, uppers []float64, cumulativeByUpper map[float64]uint64) float64 {
	if total == 0 || q <= 0 {
		return 0
	}
	if q >= 1 {
		for i := len(uppers) - 1; i >= 0; i-- {
			if !math.IsInf(uppers[i], 1) {
				return uppers[i]
			}
		}
		return 0
	}

	target := q * float64(total)
	var prevUpper float64
	var prevCum float64
	for _, upper := range uppers {
		cum := float64(cumulativeByUpper[upper])
		if cum < target {
			prevUpper = upper
			prevCum = cum
			continue
		}
		bucketCount := cum - prevCum
		if bucketCount <= 0 || upper == prevUpper {
			return upper
		}
		if math.IsInf(upper, 1) {
			return prevUpper
		}
		return prevUpper + (upper-prevUpper)*((target-prevCum)/bucketCount)
	}
	return prevUpper
}
