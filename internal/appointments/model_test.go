package appointments

import (
	"errors"
	"testing"
	"time"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		raw     string
		want    Priority
		wantErr bool
	}{
		{"Emergency", PriorityEmergency, false},
		{"High", PriorityHigh, false},
		{"Normal", PriorityNormal, false},
		{"Low", PriorityLow, false},
		{"", PriorityNormal, false},
		{"  Normal  ", PriorityNormal, false},
		{"urgent", "", true},
		{"normal", "", true},
	}
	for _, tc := range tests {
		got, err := ParsePriority(tc.raw)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidPriority) {
				t.Errorf("ParsePriority(%q) err = %v, want ErrInvalidPriority", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePriority(%q) failed: %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParsePriority(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestPriorityScore(t *testing.T) {
	tests := []struct {
		priority Priority
		want     int
	}{
		{PriorityEmergency, 3},
		{PriorityHigh, 2},
		{PriorityNormal, 1},
		{PriorityLow, 0},
		{Priority("bogus"), 0},
	}
	for _, tc := range tests {
		if got := tc.priority.Score(); got != tc.want {
			t.Errorf("%s.Score() = %d, want %d", tc.priority, got, tc.want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := map[Status][]Status{
		StatusWaiting:    {StatusInProgress, StatusCompleted, StatusNoShow},
		StatusInProgress: {StatusCompleted, StatusNoShow},
		StatusCompleted:  {},
		StatusNoShow:     {},
	}
	all := []Status{StatusWaiting, StatusInProgress, StatusCompleted, StatusNoShow}

	for from, tos := range allowed {
		ok := make(map[Status]bool, len(tos))
		for _, to := range tos {
			ok[to] = true
		}
		for _, to := range all {
			if got := from.CanTransition(to); got != ok[to] {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", from, to, got, ok[to])
			}
		}
	}
}

func TestStatusClassification(t *testing.T) {
	if !StatusWaiting.IsActive() || !StatusInProgress.IsActive() {
		t.Error("Waiting and In Progress must be active")
	}
	if StatusCompleted.IsActive() || StatusNoShow.IsActive() {
		t.Error("terminal statuses must not be active")
	}
	if !StatusCompleted.IsTerminal() || !StatusNoShow.IsTerminal() {
		t.Error("Completed and No Show must be terminal")
	}
	if StatusWaiting.IsTerminal() {
		t.Error("Waiting must not be terminal")
	}
}

func TestDateOf(t *testing.T) {
	in := time.Date(2026, 3, 10, 16, 45, 12, 99, time.FixedZone("IST", 5*3600+1800))
	got := DateOf(in)
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Errorf("DateOf did not truncate to midnight: %v", got)
	}
	if got.Location() != time.UTC {
		t.Errorf("DateOf location = %v, want UTC", got.Location())
	}
}
