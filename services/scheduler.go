package services

import (
	"log"
	"time"

	"github.com/mkof14/dishcore-sub001/models"

	"github.com/go-co-op/gocron/v2"
)

// StartLifecycleScheduler moves challenges through their window every minute:
// scheduled → active once starts_at passes, active → ended once ends_at passes.
func (s *ChallengeService) StartLifecycleScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := time.Now()

			var toActivate []models.Challenge
			err := s.DB.Where("status = ? AND starts_at <= ?", models.ChallengeStatusScheduled, now).
				Find(&toActivate).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			for _, ch := range toActivate {
				ch.Status = models.ChallengeStatusActive
				if err := s.DB.Save(&ch).Error; err != nil {
					log.Printf("[Scheduler] Failed to activate challenge %s: %v", ch.ID, err)
				} else {
					log.Printf("✅ Auto-activated challenge: %s", ch.Title)
				}
			}

			var toEnd []models.Challenge
			err = s.DB.Where("status = ? AND ends_at IS NOT NULL AND ends_at <= ?", models.ChallengeStatusActive, now).
				Find(&toEnd).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			for _, ch := range toEnd {
				ch.Status = models.ChallengeStatusEnded
				if err := s.DB.Save(&ch).Error; err != nil {
					log.Printf("[Scheduler] Failed to end challenge %s: %v", ch.ID, err)
				} else {
					log.Printf("⏹️ Auto-ended challenge: %s", ch.Title)
				}
			}
		}),
	)
}
