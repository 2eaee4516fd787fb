package queue

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/karthikvn/clinicq/internal/appointments"
)

// Engine derives the live per-doctor queue from committed appointment
// state. It holds no state of its own; every call re-reads the store.
type Engine struct {
	store appointments.Store
}

// NewEngine creates a queue engine over the given store.
func NewEngine(store appointments.Store) *Engine {
	return &Engine{store: store}
}

// ActiveQueue returns the doctor's Waiting/In Progress appointments for
// the date, ordered by priority score descending then token number
// ascending. Token uniqueness per (doctor, date) makes this a total
// order.
func (e *Engine) ActiveQueue(ctx context.Context, doctorID string, date time.Time) ([]*appointments.Appointment, error) {
	entries, err := e.store.QueryActive(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("queue: load active queue: %w", err)
	}
	sortQueue(entries)
	return entries, nil
}

// Position returns the 1-based place of the appointment in its own
// doctor/date queue, or 0 when the appointment is no longer active.
// A zero position is not an error; callers report "no position".
func (e *Engine) Position(ctx context.Context, appt *appointments.Appointment) (int, error) {
	queue, err := e.ActiveQueue(ctx, appt.DoctorID, appt.TokenDate)
	if err != nil {
		return 0, err
	}
	for i, entry := range queue {
		if entry.ID == appt.ID {
			return i + 1, nil
		}
	}
	return 0, nil
}

// Next returns the head of the active queue, or nil when the queue is
// empty. Used to pick the patient to call in after a terminal
// transition.
func (e *Engine) Next(ctx context.Context, doctorID string, date time.Time) (*appointments.Appointment, error) {
	queue, err := e.ActiveQueue(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	if len(queue) == 0 {
		return nil, nil
	}
	return queue[0], nil
}

// Length reports the active queue size without materializing order.
func (e *Engine) Length(ctx context.Context, doctorID string, date time.Time) (int, error) {
	entries, err := e.store.QueryActive(ctx, doctorID, date)
	if err != nil {
		return 0, fmt.Errorf("queue: load active queue: %w", err)
	}
	return len(entries), nil
}

func sortQueue(entries []*appointments.Appointment) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].PriorityScore != entries[j].PriorityScore {
			return entries[i].PriorityScore > entries[j].PriorityScore
		}
		return entries[i].TokenNumber < entries[j].TokenNumber
	})
}
