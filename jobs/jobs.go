package jobs

import (
	"context"
	"log"
	"time"

	"wayfare/events"
	"wayfare/itinerary"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the recurring checks: trip advancement in the morning, the
// docs reminder right after, and the weekly event newsletter on Sunday
// evening.
type Scheduler struct {
	cron       *cron.Cron
	notifier   *itinerary.Notifier
	newsletter *events.Newsletter
}

func New(notifier *itinerary.Notifier, newsletter *events.Newsletter) *Scheduler {
	return &Scheduler{cron: cron.New(), notifier: notifier, newsletter: newsletter}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 7 * * *", s.runDailySchedule); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("30 7 * * *", s.runDocsReminder); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("38 22 * * 0", s.runNewsletter); err != nil {
		return err
	}
	s.cron.Start()
	log.Println("[jobs] scheduler started")
	return nil
}

// Stop waits for any in-flight run to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[jobs] scheduler stopped")
}

func (s *Scheduler) runDailySchedule() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	s.notifier.RunDailySchedule(ctx)
}

func (s *Scheduler) runDocsReminder() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	s.notifier.RunDocsReminder(ctx)
}

func (s *Scheduler) runNewsletter() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	s.newsletter.Run(ctx)
}
