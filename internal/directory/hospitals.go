package directory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryHospitalRepository backs tests and DB-less development.
type InMemoryHospitalRepository struct {
	mu        sync.RWMutex
	hospitals []*Hospital
}

// NewInMemoryHospitalRepository creates an empty in-memory hospital directory.
func NewInMemoryHospitalRepository() *InMemoryHospitalRepository {
	return &InMemoryHospitalRepository{}
}

// Put appends a hospital record, assigning an ID when missing.
func (r *InMemoryHospitalRepository) Put(h *Hospital) *Hospital {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	cp := *h
	r.hospitals = append(r.hospitals, &cp)
	return h
}

func (r *InMemoryHospitalRepository) Search(ctx context.Context, q HospitalQuery) ([]*Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Hospital
	for _, h := range r.hospitals {
		if q.GovernmentOnly && !h.Government {
			continue
		}
		if q.State != "" && !strings.EqualFold(h.State, q.State) {
			continue
		}
		if q.District != "" && !strings.EqualFold(h.District, q.District) {
			continue
		}
		if q.NamePrefix != "" && !strings.HasPrefix(strings.ToLower(h.Name), strings.ToLower(q.NamePrefix)) {
			continue
		}
		cp := *h
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	limit := q.Limit
	if limit <= 0 || limit > maxHospitalResults {
		limit = maxHospitalResults
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryHospitalRepository) States(ctx context.Context, governmentOnly bool) ([]string, error) {
	return r.distinct(governmentOnly, "", func(h *Hospital) string { return h.State })
}

func (r *InMemoryHospitalRepository) Districts(ctx context.Context, state string, governmentOnly bool) ([]string, error) {
	return r.distinct(governmentOnly, state, func(h *Hospital) string { return h.District })
}

func (r *InMemoryHospitalRepository) distinct(governmentOnly bool, state string, field func(*Hospital) string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, h := range r.hospitals {
		if governmentOnly && !h.Government {
			continue
		}
		if state != "" && !strings.EqualFold(h.State, state) {
			continue
		}
		v := strings.TrimSpace(field(h))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

var _ HospitalRepository = (*InMemoryHospitalRepository)(nil)
