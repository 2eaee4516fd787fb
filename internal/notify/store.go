package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists notification records.
type Store interface {
	Insert(ctx context.Context, n *Notification) error
	// ListForUser returns the user's most recent notifications, newest
	// first, optionally limited to unread ones.
	ListForUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]*Notification, error)
	// MarkRead flips the read flag. The userID guard keeps recipients
	// from touching each other's records.
	MarkRead(ctx context.Context, id, userID string) error
}

// InMemoryStore keeps notifications in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Notification
}

// NewInMemoryStore creates an empty in-memory notification store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*Notification)}
}

func (s *InMemoryStore) Insert(ctx context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Channel == "" {
		n.Channel = ChannelInApp
	}
	cp := *n
	s.records[n.ID] = &cp
	return nil
}

func (s *InMemoryStore) ListForUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Notification
	for _, n := range s.records {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) MarkRead(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.records[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.Read = true
	return nil
}

var _ Store = (*InMemoryStore)(nil)
