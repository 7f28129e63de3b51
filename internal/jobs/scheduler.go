package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs the background maintenance jobs on a daily cadence.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler builds the scheduler. All jobs run in UTC so restarts in
// different timezones never shift the cadence.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, err
	}
	return &Scheduler{scheduler: s}, nil
}

// Daily registers task to run every day at the given UTC hour. Job panics
// or errors are logged, never fatal.
func (s *Scheduler) Daily(name string, hour int, task func(ctx context.Context) error) error {
	_, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), 0, 0))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			log.Printf("▶️  [JOBS] Running %s", name)
			start := time.Now()
			if err := task(ctx); err != nil {
				log.Printf("❌ [JOBS] %s failed: %v", name, err)
				return
			}
			log.Printf("✅ [JOBS] %s completed in %v", name, time.Since(start).Round(time.Millisecond))
		}),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}
	log.Printf("⏰ [JOBS] Registered %s (daily at %02d:00 UTC)", name, hour)
	return nil
}

// Start begins executing registered jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
	log.Printf("🚀 [JOBS] Scheduler started with %d jobs", len(s.scheduler.Jobs()))
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		log.Printf("⚠️ [JOBS] Scheduler shutdown: %v", err)
	}
}
