package itinerary

import (
	"context"
	"fmt"
	"log"
	"time"

	"wayfare/mailer"
	"wayfare/models"
	"wayfare/utils"
)

// DefaultDocsLeadDays is how far before departure the docs reminder goes out.
const DefaultDocsLeadDays = 15

// Notifier owns the two scheduled checks: the daily schedule run that moves
// itineraries forward and mails the day plan, and the docs reminder ahead of
// departure. One failing itinerary never stops the run.
type Notifier struct {
	itins     Store
	travelers TravelerGetter
	users     UserGetter
	mail      mailer.Mailer

	docsLeadDays int
	now          func() time.Time
}

func NewNotifier(itins Store, travelers TravelerGetter, users UserGetter, mail mailer.Mailer) *Notifier {
	return &Notifier{
		itins:        itins,
		travelers:    travelers,
		users:        users,
		mail:         mail,
		docsLeadDays: DefaultDocsLeadDays,
		now:          time.Now,
	}
}

// RunDailySchedule advances every itinerary whose window spans today and
// mails the owner the current day plan. Status only moves forward: PENDING
// becomes READY on the start date, anything not yet COMPLETED becomes
// COMPLETED on the end date. A re-run on the same day sends no second mail.
func (n *Notifier) RunDailySchedule(ctx context.Context) {
	today := utils.MidnightUTC(n.now().UTC())

	itineraries, err := n.itins.FindForDailySchedule(ctx, today)
	if err != nil {
		log.Printf("[schedule] daily run: %v", err)
		return
	}
	log.Printf("[schedule] daily run: %d itinerar(ies) in window", len(itineraries))

	for i := range itineraries {
		it := &itineraries[i]
		if err := n.advanceOne(ctx, it, today); err != nil {
			log.Printf("[schedule] itinerary %s: %v", it.ID.Hex(), err)
		}
	}
}

func (n *Notifier) advanceOne(ctx context.Context, it *models.Itinerary, today time.Time) error {
	id := it.ID.Hex()

	if today.Equal(utils.MidnightUTC(it.StartDate)) && it.Status == models.ItineraryPending {
		if err := n.itins.SetStatus(ctx, id, models.ItineraryReady); err != nil {
			return fmt.Errorf("mark ready: %w", err)
		}
		it.Status = models.ItineraryReady
	}

	if it.LastNotifiedAt == nil || !utils.MidnightUTC(*it.LastNotifiedAt).Equal(today) {
		if err := n.sendDayPlan(ctx, it, today); err != nil {
			log.Printf("[schedule] itinerary %s: day plan mail: %v", id, err)
		} else if err := n.itins.SetLastNotified(ctx, id, today); err != nil {
			return fmt.Errorf("record notification: %w", err)
		}
	}

	if today.Equal(utils.MidnightUTC(it.EndDate)) && it.Status != models.ItineraryCompleted {
		if err := n.itins.SetStatus(ctx, id, models.ItineraryCompleted); err != nil {
			return fmt.Errorf("mark completed: %w", err)
		}
	}
	return nil
}

func (n *Notifier) sendDayPlan(ctx context.Context, it *models.Itinerary, today time.Time) error {
	dayIdx := int(today.Sub(utils.MidnightUTC(it.StartDate)).Hours() / 24)
	if dayIdx < 0 || dayIdx >= len(it.Details) {
		return fmt.Errorf("no day plan for day %d", dayIdx+1)
	}
	day := it.Details[dayIdx]

	traveler, user, err := n.recipient(ctx, it.UserID)
	if err != nil {
		return err
	}
	body, err := renderDailySchedule(traveler.FullName(), it.City, day)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Day %d of your trip to %s", day.Day, it.City)
	return n.mail.Send(user.Email, subject, body)
}

// RunDocsReminder mails the stored docs checklist to owners whose trip
// starts in docsLeadDays days.
func (n *Notifier) RunDocsReminder(ctx context.Context) {
	target := utils.MidnightUTC(n.now().UTC()).AddDate(0, 0, n.docsLeadDays)

	itineraries, err := n.itins.FindForDocsReminder(ctx, target)
	if err != nil {
		log.Printf("[schedule] docs run: %v", err)
		return
	}
	log.Printf("[schedule] docs run: %d itinerar(ies) starting on %s", len(itineraries), target.Format("2006-01-02"))

	for i := range itineraries {
		it := &itineraries[i]
		if it.Docs == nil {
			continue
		}
		if err := n.sendDocsReminder(ctx, it); err != nil {
			log.Printf("[schedule] itinerary %s: docs mail: %v", it.ID.Hex(), err)
		}
	}
}

func (n *Notifier) sendDocsReminder(ctx context.Context, it *models.Itinerary) error {
	traveler, user, err := n.recipient(ctx, it.UserID)
	if err != nil {
		return err
	}
	body, err := renderDocsReminder(traveler.FullName(), it.City, it.StartDate, it.Docs)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Your trip to %s is getting close", it.City)
	return n.mail.Send(user.Email, subject, body)
}

func (n *Notifier) recipient(ctx context.Context, userID string) (*models.Traveler, *models.User, error) {
	traveler, err := n.travelers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("traveler lookup: %w", err)
	}
	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("user lookup: %w", err)
	}
	return traveler, user, nil
}
