package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/karthikvn/clinicq/internal/appointments"
	"github.com/karthikvn/clinicq/pkg/logging"
)

// CrowdService serves crowd status, fronting the aggregator with a
// short-lived Redis snapshot so the public endpoint does not recompute
// on every poll. Without Redis it degrades to live computation.
type CrowdService struct {
	agg    *CrowdAggregator
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCrowdService creates a crowd service. redisClient may be nil.
func NewCrowdService(agg *CrowdAggregator, redisClient *redis.Client, ttl time.Duration, logger *logging.Logger) *CrowdService {
	if logger == nil {
		logger = logging.Default()
	}
	return &CrowdService{agg: agg, redis: redisClient, ttl: ttl, logger: logger}
}

func (s *CrowdService) key(date time.Time) string {
	return fmt.Sprintf("crowd:status:%s", appointments.DateOf(date).Format(time.DateOnly))
}

// Status returns the crowd status for the date, from cache when fresh.
// Cache failures are logged and fall through to the aggregator; a
// stale-by-TTL snapshot is acceptable for a congestion indicator.
func (s *CrowdService) Status(ctx context.Context, date time.Time) (*CrowdStatus, error) {
	if s.redis != nil {
		data, err := s.redis.Get(ctx, s.key(date)).Bytes()
		if err == nil {
			var cached CrowdStatus
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
			s.logger.Warn("crowd cache: corrupt snapshot, recomputing", "key", s.key(date))
		} else if err != redis.Nil {
			s.logger.Warn("crowd cache: read failed", "error", err)
		}
	}

	status, err := s.agg.Status(ctx, date)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		data, err := json.Marshal(status)
		if err == nil {
			if err := s.redis.Set(ctx, s.key(date), data, s.ttl).Err(); err != nil {
				s.logger.Warn("crowd cache: write failed", "error", err)
			}
		}
	}
	return status, nil
}

// Invalidate drops the cached snapshot for a date. Booking and status
// flows call this so the indicator tracks mutations promptly.
func (s *CrowdService) Invalidate(ctx context.Context, date time.Time) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, s.key(date)).Err(); err != nil {
		s.logger.Warn("crowd cache: invalidate failed", "error", err)
	}
}
