package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/karthikvn/clinicq/internal/appointments"
	"github.com/karthikvn/clinicq/internal/directory"
)

// CrowdLevel is the coarse congestion classification shown to patients.
type CrowdLevel string

const (
	CrowdLow      CrowdLevel = "Low"
	CrowdMedium   CrowdLevel = "Medium"
	CrowdHigh     CrowdLevel = "High"
	CrowdCritical CrowdLevel = "Critical"
)

// CrowdStatus summarizes facility-wide load for a date.
type CrowdStatus struct {
	QueueLen         int        `json:"queue_len"`
	AvailableDoctors int        `json:"available_doctors"`
	CapacityPerHour  int        `json:"capacity_per_hour"`
	Level            CrowdLevel `json:"level"`
}

// CrowdAggregator derives congestion from live queue length versus
// aggregate doctor capacity.
type CrowdAggregator struct {
	store     appointments.Store
	directory directory.Repository
}

// NewCrowdAggregator creates a crowd aggregator.
func NewCrowdAggregator(store appointments.Store, dir directory.Repository) *CrowdAggregator {
	return &CrowdAggregator{store: store, directory: dir}
}

// Status computes the crowd status for the given date. Capacity counts
// only doctors who are currently Available; their average slot length
// defaults to ten minutes when none are.
func (c *CrowdAggregator) Status(ctx context.Context, date time.Time) (*CrowdStatus, error) {
	active, err := c.store.QueryActiveAll(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("queue: crowd queue length: %w", err)
	}

	doctors, err := c.directory.ListDoctors(ctx, directory.DoctorFilter{})
	if err != nil {
		return nil, fmt.Errorf("queue: crowd doctors: %w", err)
	}

	availableCount := 0
	slotSum := 0
	for _, d := range doctors {
		if d.Availability == directory.Available {
			availableCount++
			slotSum += d.SlotMinutes
		}
	}

	avgSlot := 10.0
	if availableCount > 0 {
		avgSlot = float64(slotSum) / float64(availableCount)
	}
	if avgSlot < minSlotMinutes {
		avgSlot = minSlotMinutes
	}

	capacity := int(float64(availableCount) * 60 / avgSlot)
	if capacity < 1 {
		capacity = 1
	}

	load := float64(len(active)) / float64(capacity)

	var level CrowdLevel
	switch {
	case load < 0.5:
		level = CrowdLow
	case load < 1.0:
		level = CrowdMedium
	case load < 1.5:
		level = CrowdHigh
	default:
		level = CrowdCritical
	}

	return &CrowdStatus{
		QueueLen:         len(active),
		AvailableDoctors: availableCount,
		CapacityPerHour:  capacity,
		Level:            level,
	}, nil
}
