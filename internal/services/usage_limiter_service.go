package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// UsageLimiterService enforces the daily assistant-message quota per user.
// Counters live in Redis keyed by user and UTC date, expiring shortly after
// the day rolls over. Without Redis the limiter is disabled.
type UsageLimiterService struct {
	redis      *RedisService
	dailyLimit int64
}

// LimitExceededError reports an exhausted quota with the reset time so the
// handler can return a structured 429.
type LimitExceededError struct {
	ErrorCode string    `json:"error_code"`
	Message   string    `json:"message"`
	Limit     int64     `json:"limit"`
	Used      int64     `json:"used"`
	ResetAt   time.Time `json:"reset_at"`
}

func (e *LimitExceededError) Error() string {
	return e.Message
}

// NewUsageLimiterService builds the limiter. redis may be nil.
func NewUsageLimiterService(redis *RedisService, dailyLimit int64) *UsageLimiterService {
	return &UsageLimiterService{redis: redis, dailyLimit: dailyLimit}
}

// CheckMessageLimit returns a LimitExceededError when the user has spent
// today's quota. Redis trouble fails open; a broken limiter must not take
// the assistant down.
func (s *UsageLimiterService) CheckMessageLimit(ctx context.Context, userID string) error {
	if s.redis == nil || s.dailyLimit <= 0 {
		return nil
	}

	count, err := s.getDailyCount(ctx, userID)
	if err != nil {
		return nil
	}
	if count >= s.dailyLimit {
		resetAt := nextMidnightUTC()
		return &LimitExceededError{
			ErrorCode: "message_limit_exceeded",
			Message:   fmt.Sprintf("Daily assistant message limit reached (%d/%d). Resets at %s UTC.", count, s.dailyLimit, resetAt.Format("15:04")),
			Limit:     s.dailyLimit,
			Used:      count,
			ResetAt:   resetAt,
		}
	}
	return nil
}

// IncrementMessageCount records one assistant message for the user.
func (s *UsageLimiterService) IncrementMessageCount(ctx context.Context, userID string) error {
	if s.redis == nil || s.dailyLimit <= 0 {
		return nil
	}
	key := s.dailyKey(userID)
	if _, err := s.redis.Client().Incr(ctx, key).Result(); err != nil {
		return err
	}
	// Expire an hour past midnight so late readers still see today's count.
	s.redis.Client().Expire(ctx, key, time.Until(nextMidnightUTC().Add(time.Hour)))
	return nil
}

// GetDailyUsage returns today's count and the limit for the usage endpoint.
func (s *UsageLimiterService) GetDailyUsage(ctx context.Context, userID string) (used, limit int64, err error) {
	if s.redis == nil || s.dailyLimit <= 0 {
		return 0, 0, nil
	}
	used, err = s.getDailyCount(ctx, userID)
	return used, s.dailyLimit, err
}

func (s *UsageLimiterService) getDailyCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.redis.Client().Get(ctx, s.dailyKey(userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}

func (s *UsageLimiterService) dailyKey(userID string) string {
	return fmt.Sprintf("usage:messages:%s:%s", userID, time.Now().UTC().Format("2006-01-02"))
}

func nextMidnightUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
