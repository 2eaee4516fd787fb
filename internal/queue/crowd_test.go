package queue

import (
	"context"
	"testing"

	"github.com/karthikvn/clinicq/internal/appointments"
	"github.com/karthikvn/clinicq/internal/directory"
)

func crowdFixture(t *testing.T) (*directory.InMemoryRepository, *appointments.InMemoryStore, *CrowdAggregator) {
	t.Helper()
	repo := directory.NewInMemoryRepository()
	store := appointments.NewInMemoryStore()
	return repo, store, NewCrowdAggregator(store, repo)
}

func seedWaiting(t *testing.T, store *appointments.InMemoryStore, doctorID string, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		err := store.Insert(context.Background(), &appointments.Appointment{
			DoctorID:    doctorID,
			Status:      appointments.StatusWaiting,
			TokenNumber: i,
			TokenDate:   testDate,
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestCrowdStatusLevels(t *testing.T) {
	tests := []struct {
		name    string
		waiting int
		want    CrowdLevel
	}{
		{"idle facility", 2, CrowdLow},
		{"half capacity is medium", 6, CrowdMedium},
		{"at capacity is high", 12, CrowdHigh},
		{"past one and a half is critical", 18, CrowdCritical},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, store, agg := crowdFixture(t)
			// Two available doctors, 10-minute slots: 12 consults/hour.
			seedDoctor(repo, "doc-1", "cardiology", directory.Available)
			seedDoctor(repo, "doc-2", "cardiology", directory.Available)
			seedWaiting(t, store, "doc-1", tc.waiting)

			status, err := agg.Status(context.Background(), testDate)
			if err != nil {
				t.Fatalf("Status failed: %v", err)
			}
			if status.CapacityPerHour != 12 {
				t.Fatalf("capacity = %d, want 12", status.CapacityPerHour)
			}
			if status.QueueLen != tc.waiting {
				t.Errorf("queue len = %d, want %d", status.QueueLen, tc.waiting)
			}
			if status.Level != tc.want {
				t.Errorf("level = %s, want %s", status.Level, tc.want)
			}
		})
	}
}

func TestCrowdStatusNoAvailableDoctors(t *testing.T) {
	repo, store, agg := crowdFixture(t)
	seedDoctor(repo, "doc-1", "cardiology", directory.OffDuty)
	seedWaiting(t, store, "doc-1", 3)

	status, err := agg.Status(context.Background(), testDate)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.AvailableDoctors != 0 {
		t.Errorf("available = %d, want 0", status.AvailableDoctors)
	}
	// Capacity is floored at 1 so load stays finite; three waiting
	// against capacity one is critical.
	if status.CapacityPerHour != 1 {
		t.Errorf("capacity = %d, want floor of 1", status.CapacityPerHour)
	}
	if status.Level != CrowdCritical {
		t.Errorf("level = %s, want Critical", status.Level)
	}
}

func TestCrowdStatusOnlyCountsActive(t *testing.T) {
	repo, store, agg := crowdFixture(t)
	seedDoctor(repo, "doc-1", "cardiology", directory.Available)

	seedWaiting(t, store, "doc-1", 2)
	err := store.Insert(context.Background(), &appointments.Appointment{
		DoctorID:    "doc-1",
		Status:      appointments.StatusCompleted,
		TokenNumber: 3,
		TokenDate:   testDate,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	status, err := agg.Status(context.Background(), testDate)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.QueueLen != 2 {
		t.Errorf("queue len = %d, want 2 (completed excluded)", status.QueueLen)
	}
}
