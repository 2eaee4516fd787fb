package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DayCounts aggregates a single day's appointment totals for the admin
// dashboard.
type DayCounts struct {
	Total     int `json:"total"`
	Emergency int `json:"emergency"`
	Active    int `json:"active"`
}

// Store is the appointment persistence contract required by the
// scheduling core.
type Store interface {
	// MaxToken returns the highest token issued for the doctor on the
	// given date, or 0 when none exist. Callers serialize MaxToken +
	// Insert per (doctor, date); the store itself only promises read
	// consistency.
	MaxToken(ctx context.Context, doctorID string, date time.Time) (int, error)
	Insert(ctx context.Context, appt *Appointment) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	// QueryActive returns Waiting/In Progress appointments for the
	// doctor and date in no particular order; the queue engine sorts.
	QueryActive(ctx context.Context, doctorID string, date time.Time) ([]*Appointment, error)
	QueryActiveAll(ctx context.Context, date time.Time) ([]*Appointment, error)
	LatestForPatient(ctx context.Context, patientID string) (*Appointment, error)
	CountsForDate(ctx context.Context, date time.Time) (DayCounts, error)
}

// InMemoryStore keeps appointments in process memory for tests and
// DB-less development.
type InMemoryStore struct {
	mu    sync.RWMutex
	appts map[string]*Appointment
}

// NewInMemoryStore creates an empty in-memory appointment store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{appts: make(map[string]*Appointment)}
}

func (s *InMemoryStore) MaxToken(ctx context.Context, doctorID string, date time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	date = DateOf(date)
	max := 0
	for _, a := range s.appts {
		if a.DoctorID == doctorID && a.TokenDate.Equal(date) && a.TokenNumber > max {
			max = a.TokenNumber
		}
	}
	return max, nil
}

func (s *InMemoryStore) Insert(ctx context.Context, appt *Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now().UTC()
	}
	appt.TokenDate = DateOf(appt.TokenDate)
	cp := *appt
	s.appts[appt.ID] = &cp
	return nil
}

func (s *InMemoryStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appts[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	return nil
}

func (s *InMemoryStore) GetByID(ctx context.Context, id string) (*Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *InMemoryStore) QueryActive(ctx context.Context, doctorID string, date time.Time) ([]*Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	date = DateOf(date)
	var out []*Appointment
	for _, a := range s.appts {
		if a.DoctorID == doctorID && a.TokenDate.Equal(date) && a.Status.IsActive() {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemoryStore) QueryActiveAll(ctx context.Context, date time.Time) ([]*Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	date = DateOf(date)
	var out []*Appointment
	for _, a := range s.appts {
		if a.TokenDate.Equal(date) && a.Status.IsActive() {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemoryStore) LatestForPatient(ctx context.Context, patientID string) (*Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*Appointment
	for _, a := range s.appts {
		if a.PatientID == patientID {
			all = append(all, a)
		}
	}
	if len(all) == 0 {
		return nil, ErrNotFound
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	cp := *all[0]
	return &cp, nil
}

func (s *InMemoryStore) CountsForDate(ctx context.Context, date time.Time) (DayCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	date = DateOf(date)
	var c DayCounts
	for _, a := range s.appts {
		if !a.TokenDate.Equal(date) {
			continue
		}
		c.Total++
		if a.Priority == PriorityEmergency {
			c.Emergency++
		}
		if a.Status.IsActive() {
			c.Active++
		}
	}
	return c, nil
}

var _ Store = (*InMemoryStore)(nil)
