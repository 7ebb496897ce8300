package events

import (
	"context"
	"fmt"
	"log"
	"time"

	"wayfare/mailer"
	"wayfare/models"
	"wayfare/utils"
)

// UpcomingFinder matches live events against a set of activity names.
type UpcomingFinder interface {
	FindUpcomingByActivities(ctx context.Context, activities []string, from time.Time) ([]models.Event, error)
}

// TravelerLister enumerates every traveler profile for the newsletter run.
type TravelerLister interface {
	ListAll(ctx context.Context) ([]models.Traveler, error)
}

// UserGetter resolves the mail address behind a traveler profile.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Newsletter mails each traveler the upcoming events matching their declared
// interests. Travelers with no interests get nothing, and neither do
// travelers with no matching events. One failing traveler never stops the
// run.
type Newsletter struct {
	events    UpcomingFinder
	travelers TravelerLister
	users     UserGetter
	mail      mailer.Mailer

	now func() time.Time
}

func NewNewsletter(events UpcomingFinder, travelers TravelerLister, users UserGetter, mail mailer.Mailer) *Newsletter {
	return &Newsletter{
		events:    events,
		travelers: travelers,
		users:     users,
		mail:      mail,
		now:       time.Now,
	}
}

// Run walks all travelers and sends one newsletter per traveler with at
// least one interest and at least one matching upcoming event.
func (n *Newsletter) Run(ctx context.Context) {
	travelers, err := n.travelers.ListAll(ctx)
	if err != nil {
		log.Printf("[newsletter] list travelers: %v", err)
		return
	}

	today := utils.MidnightUTC(n.now().UTC())
	sent := 0
	for i := range travelers {
		t := &travelers[i]
		if len(t.InterestedIn) == 0 {
			continue
		}
		if err := n.sendOne(ctx, t, today); err != nil {
			log.Printf("[newsletter] traveler %s: %v", t.UserID, err)
			continue
		}
		sent++
	}
	log.Printf("[newsletter] run finished: %d mail(s) sent", sent)
}

func (n *Newsletter) sendOne(ctx context.Context, t *models.Traveler, from time.Time) error {
	matched, err := n.events.FindUpcomingByActivities(ctx, t.InterestedIn, from)
	if err != nil {
		return fmt.Errorf("match events: %w", err)
	}
	if len(matched) == 0 {
		return nil
	}

	u, err := n.users.GetByID(ctx, t.UserID)
	if err != nil {
		return fmt.Errorf("user lookup: %w", err)
	}
	body, err := renderNewsletter(t.FullName(), matched)
	if err != nil {
		return err
	}
	return n.mail.Send(u.Email, "Weekly newsletter", body)
}
