package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/karthikvn/clinicq/internal/appointments"
	"github.com/karthikvn/clinicq/internal/directory"
)

func seedDoctor(repo *directory.InMemoryRepository, id, spec string, avail directory.AvailabilityStatus) *directory.User {
	return repo.Put(&directory.User{
		ID:             id,
		Username:       id,
		Role:           directory.RoleDoctor,
		Specialization: spec,
		SlotMinutes:    10,
		Availability:   avail,
		Active:         true,
	})
}

func newSelectorFixture(t *testing.T) (*directory.InMemoryRepository, *appointments.InMemoryStore, *Selector) {
	t.Helper()
	repo := directory.NewInMemoryRepository()
	store := appointments.NewInMemoryStore()
	engine := NewEngine(store)
	return repo, store, NewSelector(repo, engine)
}

func TestChooseDoctorPrefersShorterQueue(t *testing.T) {
	repo, store, selector := newSelectorFixture(t)
	ctx := context.Background()

	seedDoctor(repo, "doc-1", "cardiology", directory.Available)
	seedDoctor(repo, "doc-2", "cardiology", directory.Available)

	today := appointments.DateOf(selector.now())
	for i := 1; i <= 3; i++ {
		err := store.Insert(ctx, &appointments.Appointment{
			DoctorID:    "doc-1",
			Status:      appointments.StatusWaiting,
			TokenNumber: i,
			TokenDate:   today,
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	chosen, err := selector.ChooseDoctor(ctx, "cardiology", "")
	if err != nil {
		t.Fatalf("ChooseDoctor failed: %v", err)
	}
	if chosen.ID != "doc-2" {
		t.Errorf("chose %s, want doc-2 with the empty queue", chosen.ID)
	}
}

func TestChooseDoctorPenalizesUnavailable(t *testing.T) {
	repo, store, selector := newSelectorFixture(t)
	ctx := context.Background()

	seedDoctor(repo, "doc-1", "cardiology", directory.OnBreak)
	seedDoctor(repo, "doc-2", "cardiology", directory.Available)

	// doc-1 on break with an empty queue costs 5; doc-2 available with
	// three waiting costs 3.
	today := appointments.DateOf(selector.now())
	for i := 1; i <= 3; i++ {
		err := store.Insert(ctx, &appointments.Appointment{
			DoctorID:    "doc-2",
			Status:      appointments.StatusWaiting,
			TokenNumber: i,
			TokenDate:   today,
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	chosen, err := selector.ChooseDoctor(ctx, "cardiology", "")
	if err != nil {
		t.Fatalf("ChooseDoctor failed: %v", err)
	}
	if chosen.ID != "doc-2" {
		t.Errorf("chose %s, want available doc-2 despite its queue", chosen.ID)
	}
}

func TestChooseDoctorTieBreaksLowestID(t *testing.T) {
	repo, _, selector := newSelectorFixture(t)

	seedDoctor(repo, "doc-3", "cardiology", directory.Available)
	seedDoctor(repo, "doc-1", "cardiology", directory.Available)
	seedDoctor(repo, "doc-2", "cardiology", directory.Available)

	chosen, err := selector.ChooseDoctor(context.Background(), "cardiology", "")
	if err != nil {
		t.Fatalf("ChooseDoctor failed: %v", err)
	}
	if chosen.ID != "doc-1" {
		t.Errorf("tie broke to %s, want doc-1", chosen.ID)
	}
}

func TestChooseDoctorNoCandidates(t *testing.T) {
	repo, _, selector := newSelectorFixture(t)
	seedDoctor(repo, "doc-1", "cardiology", directory.Available)

	_, err := selector.ChooseDoctor(context.Background(), "dermatology", "")
	if !errors.Is(err, ErrNoDoctorAvailable) {
		t.Fatalf("err = %v, want ErrNoDoctorAvailable", err)
	}
}

func TestChooseDoctorCustomCost(t *testing.T) {
	repo, _, selector := newSelectorFixture(t)

	seedDoctor(repo, "doc-1", "cardiology", directory.Available)
	seedDoctor(repo, "doc-2", "cardiology", directory.Available)

	selector.WithCost(func(ctx context.Context, d *directory.User) (int, error) {
		if d.ID == "doc-2" {
			return 0, nil
		}
		return 100, nil
	})

	chosen, err := selector.ChooseDoctor(context.Background(), "cardiology", "")
	if err != nil {
		t.Fatalf("ChooseDoctor failed: %v", err)
	}
	if chosen.ID != "doc-2" {
		t.Errorf("custom cost chose %s, want doc-2", chosen.ID)
	}
}
