package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/karthikvn/clinicq/internal/appointments"
)

// TokenAllocator issues sequential token numbers per (doctor, date).
// Allocation is linearized with a keyed mutex: two concurrent bookings
// for the same doctor and day never observe the same max token.
type TokenAllocator struct {
	store appointments.Store

	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	sweptDay string
}

// NewTokenAllocator creates an allocator over the given store.
func NewTokenAllocator(store appointments.Store) *TokenAllocator {
	return &TokenAllocator{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

func (a *TokenAllocator) keyLock(doctorID string, date time.Time) *sync.Mutex {
	day := appointments.DateOf(date).Format(time.DateOnly)
	key := doctorID + "|" + day
	a.mu.Lock()
	defer a.mu.Unlock()
	if day > a.sweptDay {
		a.evictBefore(day)
		a.sweptDay = day
	}
	l, ok := a.locks[key]
	if !ok {
		l = &sync.Mutex{}
		a.locks[key] = l
	}
	return l
}

// evictBefore drops lock entries for days before day. Bookings only
// allocate for the current date, so past-day entries are idle; without
// eviction the map grows by one entry per doctor per day.
func (a *TokenAllocator) evictBefore(day string) {
	for key := range a.locks {
		if d := key[strings.LastIndexByte(key, '|')+1:]; d < day {
			delete(a.locks, key)
		}
	}
}

// Allocate reserves the next token for the doctor and date, then runs
// insert with the key still held so the read-max-then-insert pair is
// atomic. When insert fails the token is not consumed: the next caller
// re-reads the max and receives the same number.
func (a *TokenAllocator) Allocate(ctx context.Context, doctorID string, date time.Time, insert func(token int) error) (int, error) {
	l := a.keyLock(doctorID, date)
	l.Lock()
	defer l.Unlock()

	max, err := a.store.MaxToken(ctx, doctorID, date)
	if err != nil {
		return 0, fmt.Errorf("queue: allocate token: %w", err)
	}
	token := max + 1
	if err := insert(token); err != nil {
		return 0, fmt.Errorf("queue: commit token %d: %w", token, err)
	}
	return token, nil
}
