package usecase

import (
	"context"
	"log"
	"time"
)

// Scheduler runs the full-account sync on a fixed interval. Disabled when
// the interval is zero.
type Scheduler struct {
	sync     SyncUsecase
	interval time.Duration
}

func NewScheduler(sync SyncUsecase, interval time.Duration) *Scheduler {
	return &Scheduler{sync: sync, interval: interval}
}

// Start blocks until ctx is cancelled; run it on its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		log.Println("[Scheduler] disabled (no interval configured)")
		return
	}

	log.Printf("[Scheduler] syncing every %s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[Scheduler] stopped")
			return
		case <-ticker.C:
			if err := s.sync.SyncAllActive(ctx); err != nil {
				log.Printf("[Scheduler] sync pass failed: %v", err)
			}
		}
	}
}
