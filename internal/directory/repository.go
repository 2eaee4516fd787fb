package directory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository is the read/write-through contract the scheduling core
// requires from the user directory.
type Repository interface {
	GetUser(ctx context.Context, id string) (*User, error)
	GetDoctor(ctx context.Context, id string) (*User, error)
	ListDoctors(ctx context.Context, filter DoctorFilter) ([]*User, error)
	ListAdmins(ctx context.Context) ([]*User, error)
	CountByRole(ctx context.Context, role Role) (int, error)
	SetAvailability(ctx context.Context, doctorID string, status AvailabilityStatus, note string) (*User, error)
}

// HospitalRepository serves the facility lookup used at registration
// and booking time.
type HospitalRepository interface {
	Search(ctx context.Context, q HospitalQuery) ([]*Hospital, error)
	States(ctx context.Context, governmentOnly bool) ([]string, error)
	Districts(ctx context.Context, state string, governmentOnly bool) ([]string, error)
}

// InMemoryRepository keeps the directory in process memory. It backs
// tests and local development without Postgres.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewInMemoryRepository creates an empty in-memory directory.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]*User)}
}

// Put inserts or replaces a user record, assigning an ID when missing.
func (r *InMemoryRepository) Put(u *User) *User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cp := *u
	r.users[u.ID] = &cp
	return u
}

func (r *InMemoryRepository) GetUser(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *InMemoryRepository) GetDoctor(ctx context.Context, id string) (*User, error) {
	u, err := r.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != RoleDoctor {
		return nil, ErrNotADoctor
	}
	return u, nil
}

func (r *InMemoryRepository) ListDoctors(ctx context.Context, filter DoctorFilter) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*User
	for _, u := range r.users {
		if u.Role != RoleDoctor {
			continue
		}
		if filter.ActiveOnly && !u.Active {
			continue
		}
		if filter.Specialization != "" && !strings.EqualFold(u.Specialization, filter.Specialization) {
			continue
		}
		if filter.HospitalID != "" && u.HospitalID != filter.HospitalID {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	// Stable ID order keeps selector tie-breaking deterministic.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) ListAdmins(ctx context.Context) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*User
	for _, u := range r.users {
		if u.Role == RoleAdmin {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) CountByRole(ctx context.Context, role Role) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryRepository) SetAvailability(ctx context.Context, doctorID string, status AvailabilityStatus, note string) (*User, error) {
	if _, err := ParseAvailability(string(status)); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[doctorID]
	if !ok {
		return nil, ErrNotFound
	}
	if u.Role != RoleDoctor {
		return nil, ErrNotADoctor
	}
	u.Availability = status
	u.AvailabilityNote = note
	u.AvailabilityUpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

var _ Repository = (*InMemoryRepository)(nil)
