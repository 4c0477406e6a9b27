// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"league-match-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartDisputeReminder nudges stale disputes once an hour. Matches have no
// automatic expiry — a disputed match stays pending until someone confirms or
// the winner cancels — so the job only posts a reminder into the dispute
// thread, never mutates match state.
func (s *MatchService) StartDisputeReminder() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			if s.Relay == nil {
				return
			}

			cutoff := time.Now().Add(-24 * time.Hour)

			var matches []models.Match
			err := s.DB.Where("dispute_thread_ref <> '' AND confirmed_at IS NULL AND created_at < ?", cutoff).
				Find(&matches).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, m := range matches {
				content := "This dispute is still unresolved. Confirm the result or have the winner cancel the match."
				if _, err := s.Relay.SendMessage(context.Background(), m.DisputeThreadRef, content); err != nil {
					log.Printf("[Scheduler] Failed to nudge dispute for match %s: %v", m.ID, err)
				}
			}
		}),
	)
}
