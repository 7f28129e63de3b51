package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter applies three tiers of limits to outbound scraping: a global
// server cap, a per-domain cap derived from crawl delay, and a per-user cap
// for fair sharing.
type RateLimiter struct {
	global    *rate.Limiter
	perDomain sync.Map // map[string]*rate.Limiter
	perUser   sync.Map // map[string]*rate.Limiter
}

// NewRateLimiter builds the limiter with globalRate requests/second overall.
func NewRateLimiter(globalRate float64) *RateLimiter {
	return &RateLimiter{
		global: rate.NewLimiter(rate.Limit(globalRate), int(globalRate*2)),
	}
}

// Wait blocks until all three tiers admit one request for userID against
// domain, honoring the domain's crawl delay.
func (rl *RateLimiter) Wait(ctx context.Context, userID, domain string, crawlDelay time.Duration) error {
	if err := rl.global.Wait(ctx); err != nil {
		return err
	}
	if err := rl.domainLimiter(domain, crawlDelay).Wait(ctx); err != nil {
		return err
	}
	return rl.userLimiter(userID).Wait(ctx)
}

func (rl *RateLimiter) domainLimiter(domain string, crawlDelay time.Duration) *rate.Limiter {
	if limiter, ok := rl.perDomain.Load(domain); ok {
		return limiter.(*rate.Limiter)
	}
	if crawlDelay <= 0 {
		crawlDelay = 500 * time.Millisecond
	}
	rps := 1.0 / crawlDelay.Seconds()
	if rps > 5.0 {
		rps = 5.0
	}
	if rps < 0.2 {
		rps = 0.2
	}
	actual, _ := rl.perDomain.LoadOrStore(domain, rate.NewLimiter(rate.Limit(rps), 1))
	return actual.(*rate.Limiter)
}

func (rl *RateLimiter) userLimiter(userID string) *rate.Limiter {
	if limiter, ok := rl.perUser.Load(userID); ok {
		return limiter.(*rate.Limiter)
	}
	actual, _ := rl.perUser.LoadOrStore(userID, rate.NewLimiter(rate.Limit(2.0), 4))
	return actual.(*rate.Limiter)
}
