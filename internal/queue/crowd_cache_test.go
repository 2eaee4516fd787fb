package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/karthikvn/clinicq/internal/directory"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestCrowdServiceCachesSnapshot(t *testing.T) {
	repo, store, agg := crowdFixture(t)
	client := setupTestRedis(t)
	svc := NewCrowdService(agg, client, 30*time.Second, nil)
	ctx := context.Background()

	seedDoctor(repo, "doc-1", "cardiology", directory.Available)
	seedWaiting(t, store, "doc-1", 2)

	first, err := svc.Status(ctx, testDate)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if first.QueueLen != 2 {
		t.Fatalf("queue len = %d, want 2", first.QueueLen)
	}

	// Mutate the store; the cached snapshot should still be served.
	seedWaiting(t, store, "doc-2", 4)

	second, err := svc.Status(ctx, testDate)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if second.QueueLen != first.QueueLen {
		t.Errorf("cached queue len = %d, want %d from snapshot", second.QueueLen, first.QueueLen)
	}
}

func TestCrowdServiceInvalidate(t *testing.T) {
	repo, store, agg := crowdFixture(t)
	client := setupTestRedis(t)
	svc := NewCrowdService(agg, client, 30*time.Second, nil)
	ctx := context.Background()

	seedDoctor(repo, "doc-1", "cardiology", directory.Available)
	seedWaiting(t, store, "doc-1", 1)

	if _, err := svc.Status(ctx, testDate); err != nil {
		t.Fatalf("Status failed: %v", err)
	}

	seedWaiting(t, store, "doc-2", 3)
	svc.Invalidate(ctx, testDate)

	status, err := svc.Status(ctx, testDate)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.QueueLen != 4 {
		t.Errorf("queue len after invalidate = %d, want 4", status.QueueLen)
	}
}

func TestCrowdServiceWithoutRedis(t *testing.T) {
	repo, store, agg := crowdFixture(t)
	svc := NewCrowdService(agg, nil, 30*time.Second, nil)
	ctx := context.Background()

	seedDoctor(repo, "doc-1", "cardiology", directory.Available)
	seedWaiting(t, store, "doc-1", 2)

	status, err := svc.Status(ctx, testDate)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.QueueLen != 2 {
		t.Errorf("queue len = %d, want 2", status.QueueLen)
	}
	svc.Invalidate(ctx, testDate) // no-op without a client
}
