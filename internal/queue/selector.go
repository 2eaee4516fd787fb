package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/karthikvn/clinicq/internal/directory"
)

// availabilityPenalty deprioritizes doctors who are On Break or Off
// Duty without excluding them, so bookings still succeed when every
// doctor is nominally busy.
const availabilityPenalty = 5

// CostFunc scores a candidate doctor; lower is better. Swapping the
// function changes selection strategy without touching the algorithm.
type CostFunc func(ctx context.Context, doctor *directory.User) (int, error)

// Selector load-balances new bookings across doctors matching a
// specialization/hospital filter.
type Selector struct {
	directory directory.Repository
	cost      CostFunc
	now       func() time.Time
}

// NewSelector creates a selector with the default queue-length cost
// function.
func NewSelector(dir directory.Repository, engine *Engine) *Selector {
	s := &Selector{
		directory: dir,
		now:       time.Now,
	}
	s.cost = func(ctx context.Context, doctor *directory.User) (int, error) {
		length, err := engine.Length(ctx, doctor.ID, s.now())
		if err != nil {
			return 0, err
		}
		cost := length
		if doctor.Availability != directory.Available {
			cost += availabilityPenalty
		}
		return cost, nil
	}
	return s
}

// WithCost replaces the cost function. Used by tests and future
// selection strategies.
func (s *Selector) WithCost(cost CostFunc) *Selector {
	s.cost = cost
	return s
}

// ChooseDoctor returns the minimum-cost active doctor matching the
// optional filters. Ties break toward the lowest doctor ID, which the
// directory returns in ascending ID order. Returns ErrNoDoctorAvailable
// when nothing matches.
func (s *Selector) ChooseDoctor(ctx context.Context, specialization, hospitalID string) (*directory.User, error) {
	candidates, err := s.directory.ListDoctors(ctx, directory.DoctorFilter{
		Specialization: specialization,
		HospitalID:     hospitalID,
		ActiveOnly:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("queue: list candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoDoctorAvailable
	}

	var best *directory.User
	bestCost := 0
	for _, doctor := range candidates {
		cost, err := s.cost(ctx, doctor)
		if err != nil {
			return nil, fmt.Errorf("queue: score candidate %s: %w", doctor.ID, err)
		}
		if best == nil || cost < bestCost {
			best = doctor
			bestCost = cost
		}
	}
	return best, nil
}
