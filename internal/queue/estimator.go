package queue

import (
	"time"

	"github.com/karthikvn/clinicq/internal/directory"
)

const (
	minSlotMinutes  = 5
	defaultDayStart = "09:00"
	defaultDayEnd   = "17:00"
)

// slotFor floors the doctor's slot length at five minutes so a
// misconfigured record cannot zero out wait arithmetic.
func slotFor(doctor *directory.User) int {
	slot := doctor.SlotMinutes
	if slot < minSlotMinutes {
		slot = minSlotMinutes
	}
	return slot
}

// EstimateWaitMinutes converts a queue position into an ETA. Position 1
// waits zero minutes; an unknown position (0) reports a single slot.
func EstimateWaitMinutes(doctor *directory.User, position int) int {
	slot := slotFor(doctor)
	if position <= 0 {
		return slot
	}
	ahead := position - 1
	if ahead < 0 {
		ahead = 0
	}
	return slot * ahead
}

// ComputeScheduledTime projects a wall-clock consultation time from a
// queue position. The base is now or the doctor's daily start,
// whichever is later; when the projection passes the daily end it rolls
// to the next day at daily start plus the same offset. The backlog is
// assumed to carry over exactly one day, never more. Doctors without a
// parseable window fall back to 09:00-17:00.
func ComputeScheduledTime(doctor *directory.User, position int, now time.Time) time.Time {
	return ComputeScheduledTimeWindow(doctor, position, now, defaultDayStart, defaultDayEnd)
}

// ComputeScheduledTimeWindow is ComputeScheduledTime with an explicit
// fallback consultation window for doctors whose records carry
// unparseable start/end times.
func ComputeScheduledTimeWindow(doctor *directory.User, position int, now time.Time, fallbackStart, fallbackEnd string) time.Time {
	now = now.Truncate(time.Minute)
	start := parseClock(doctor.DailyStart, fallbackStart)
	end := parseClock(doctor.DailyEnd, fallbackEnd)

	base := at(now, start)
	if now.After(base) {
		base = now
	}

	ahead := position - 1
	if ahead < 0 {
		ahead = 0
	}
	offset := time.Duration(slotFor(doctor)*ahead) * time.Minute
	scheduled := base.Add(offset)

	if clockOf(scheduled) > end {
		nextDay := now.AddDate(0, 0, 1)
		scheduled = at(nextDay, start).Add(offset)
	}
	return scheduled
}

// parseClock parses "HH:MM", falling back to the given default and
// finally to 09:00 when even the default is malformed.
func parseClock(value, fallback string) int {
	if t, err := time.Parse("15:04", value); err == nil {
		return t.Hour()*60 + t.Minute()
	}
	if t, err := time.Parse("15:04", fallback); err == nil {
		return t.Hour()*60 + t.Minute()
	}
	return 9 * 60
}

// at anchors minutes-past-midnight onto the date of t.
func at(t time.Time, minutes int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), minutes/60, minutes%60, 0, 0, t.Location())
}

func clockOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
