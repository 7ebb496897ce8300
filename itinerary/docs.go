package itinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"wayfare/apperr"
	"wayfare/assistant"
	"wayfare/mailer"
	"wayfare/models"
)

// TravelerGetter resolves the traveler profile behind a user account.
type TravelerGetter interface {
	GetByUserID(ctx context.Context, userID string) (*models.Traveler, error)
}

// UserGetter resolves a user account, mainly for its email address.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// DocsAdvisory fetches the travel-document checklist for an itinerary in a
// single assistant turn and notifies the owner. It always runs detached;
// a failure here leaves the itinerary without docs but otherwise intact.
type DocsAdvisory struct {
	gateway   assistant.Gateway
	itins     Store
	travelers TravelerGetter
	users     UserGetter
	mail      mailer.Mailer
}

func NewDocsAdvisory(gateway assistant.Gateway, itins Store, travelers TravelerGetter, users UserGetter, mail mailer.Mailer) *DocsAdvisory {
	return &DocsAdvisory{
		gateway:   gateway,
		itins:     itins,
		travelers: travelers,
		users:     users,
		mail:      mail,
	}
}

type docsResponse struct {
	Docs []models.Docs `json:"docs"`
}

// Advise retrieves the checklist for the destination, stores it on the
// itinerary and mails the owner. The mail failure is logged only; the
// checklist is already persisted at that point.
func (d *DocsAdvisory) Advise(ctx context.Context, city, itineraryID, userID string, startDate time.Time) error {
	conv := assistant.NewConversation(assistant.DocsSchema())
	conv.Add(assistant.RoleUser, assistant.RetrieveDocsPrompt(startDate.Month().String(), city))

	raw, err := d.gateway.Ask(ctx, conv)
	if err != nil {
		return fmt.Errorf("retrieve docs for %s: %w", city, err)
	}

	var resp docsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("parse docs for %s: %w", city, err)
	}
	if len(resp.Docs) == 0 {
		return apperr.ErrDocsNotFound
	}
	docs := resp.Docs[0]

	if err := d.itins.SetDocs(ctx, itineraryID, &docs); err != nil {
		return fmt.Errorf("store docs on %s: %w", itineraryID, err)
	}
	log.Printf("[docs] itinerary %s: checklist stored (%d mandatory, %d recommended)",
		itineraryID, len(docs.Mandatory), len(docs.Recommended))

	d.notifyOwner(ctx, city, itineraryID, userID, startDate, &docs)
	return nil
}

func (d *DocsAdvisory) notifyOwner(ctx context.Context, city, itineraryID, userID string, startDate time.Time, docs *models.Docs) {
	traveler, err := d.travelers.GetByUserID(ctx, userID)
	if err != nil {
		log.Printf("[docs] itinerary %s: traveler lookup: %v", itineraryID, err)
		return
	}
	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("[docs] itinerary %s: user lookup: %v", itineraryID, err)
		return
	}

	body, err := renderDocsReminder(traveler.FullName(), city, startDate, docs)
	if err != nil {
		log.Printf("[docs] itinerary %s: render mail: %v", itineraryID, err)
		return
	}
	subject := fmt.Sprintf("Documents to prepare for %s", city)
	if err := d.mail.Send(user.Email, subject, body); err != nil {
		log.Printf("[docs] itinerary %s: send mail: %v", itineraryID, err)
	}
}
