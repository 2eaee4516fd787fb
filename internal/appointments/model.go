package appointments

import (
	"strings"
	"time"
)

// Priority is the closed set of booking priorities.
type Priority string

const (
	PriorityEmergency Priority = "Emergency"
	PriorityHigh      Priority = "High"
	PriorityNormal    Priority = "Normal"
	PriorityLow       Priority = "Low"
)

// priorityScores is the canonical priority-to-weight mapping used as
// the primary queue sort key.
var priorityScores = map[Priority]int{
	PriorityEmergency: 3,
	PriorityHigh:      2,
	PriorityNormal:    1,
	PriorityLow:       0,
}

// ParsePriority validates a raw priority string. Empty input defaults
// to Normal, matching the booking form behaviour.
func ParsePriority(raw string) (Priority, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PriorityNormal, nil
	}
	p := Priority(raw)
	if _, ok := priorityScores[p]; !ok {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// Score returns the integer weight for the priority. Unknown values
// score as Normal; they cannot be constructed through ParsePriority.
func (p Priority) Score() int {
	if s, ok := priorityScores[p]; ok {
		return s
	}
	return priorityScores[PriorityNormal]
}

// Status is the closed set of appointment states.
type Status string

const (
	StatusWaiting    Status = "Waiting"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusNoShow     Status = "No Show"
)

// transitions is the explicit state machine: Waiting may move to any
// other state, In Progress only to a terminal one.
var transitions = map[Status][]Status{
	StatusWaiting:    {StatusInProgress, StatusCompleted, StatusNoShow},
	StatusInProgress: {StatusCompleted, StatusNoShow},
	StatusCompleted:  {},
	StatusNoShow:     {},
}

// ParseStatus validates a raw status string against the closed set.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if _, ok := transitions[s]; !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// CanTransition reports whether from may legally move to to.
func (from Status) CanTransition(to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusNoShow
}

// IsActive reports whether the appointment still occupies a queue slot.
func (s Status) IsActive() bool {
	return s == StatusWaiting || s == StatusInProgress
}

// Appointment is one patient's claim on a doctor's time for a day.
// Token numbers are unique and monotonically assigned per
// (doctor, token date); ScheduledTime is advisory and never drives
// queue ordering.
type Appointment struct {
	ID            string    `json:"id"`
	PatientID     string    `json:"patient_id"`
	DoctorID      string    `json:"doctor_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Status        Status    `json:"status"`
	Priority      Priority  `json:"priority"`
	PriorityScore int       `json:"priority_score"`
	Symptoms      string    `json:"symptoms,omitempty"`
	TokenNumber   int       `json:"token_number"`
	TokenDate     time.Time `json:"token_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// DateOf truncates a timestamp to its calendar date in UTC. All token
// date keys go through this so map keys and SQL date comparisons agree.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
