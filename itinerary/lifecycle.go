package itinerary

import (
	"context"
	"fmt"
	"time"

	"wayfare/apperr"
	"wayfare/models"
	"wayfare/rdx"
	"wayfare/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const mostSavedCacheKey = "itineraries:most_saved"

// Lifecycle covers everything that happens to an itinerary after promotion:
// edits while still pending, sharing, publishing, duplication and saving.
type Lifecycle struct {
	itins Store
	metas MetaStore
	now   func() time.Time
}

func NewLifecycle(itins Store, metas MetaStore) *Lifecycle {
	return &Lifecycle{itins: itins, metas: metas, now: time.Now}
}

func (l *Lifecycle) Get(ctx context.Context, id string) (*models.Itinerary, error) {
	return l.itins.GetByID(ctx, id)
}

// Update rewrites the trip parameters. Only PENDING itineraries can change;
// once the trip is underway or done the plan is frozen.
func (l *Lifecycle) Update(ctx context.Context, id string, upd *models.UpdateItineraryRequest) error {
	if err := upd.Validate(); err != nil {
		return err
	}
	upd.StartDate = utils.MidnightUTC(upd.StartDate)
	upd.EndDate = utils.MidnightUTC(upd.EndDate)

	it, err := l.itins.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if it.Status != models.ItineraryPending {
		return apperr.ErrCannotUpdateItinerary
	}
	return l.itins.UpdateFields(ctx, id, upd)
}

func (l *Lifecycle) Delete(ctx context.Context, id string) error {
	return l.itins.SoftDelete(ctx, id)
}

func (l *Lifecycle) ShareWith(ctx context.Context, id string, users []string) error {
	if len(users) == 0 {
		return fmt.Errorf("no users to share with")
	}
	return l.itins.ShareWith(ctx, id, users)
}

func (l *Lifecycle) Publish(ctx context.Context, id string, public bool) error {
	return l.itins.SetPublic(ctx, id, public)
}

// Complete marks the trip done ahead of its end date.
func (l *Lifecycle) Complete(ctx context.Context, id string) error {
	return l.itins.SetStatus(ctx, id, models.ItineraryCompleted)
}

// Duplicate copies an itinerary for userID with the same trip length but a
// fresh window starting tomorrow. The copy starts PENDING, unshared, private
// and with both mail opt-ins cleared; the source meta records who
// duplicated it.
func (l *Lifecycle) Duplicate(ctx context.Context, userID, id string) (string, error) {
	orig, err := l.itins.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	start := utils.MidnightUTC(l.now().UTC()).AddDate(0, 0, 1)
	end := start.AddDate(0, 0, orig.TripDuration()-1)

	copied := *orig
	copied.ID = primitive.NilObjectID
	copied.UserID = userID
	copied.StartDate = start
	copied.EndDate = end
	copied.Status = models.ItineraryPending
	copied.SharedWith = []string{}
	copied.IsPublic = false
	copied.DocsNotification = false
	copied.ReminderNotification = false
	copied.CreatedAt = l.now().UTC()
	copied.UpdatedAt = nil
	copied.DeletedAt = nil
	copied.LastNotifiedAt = nil

	newID, err := l.itins.Insert(ctx, &copied)
	if err != nil {
		return "", fmt.Errorf("insert duplicate: %w", err)
	}

	newOID, _ := primitive.ObjectIDFromHex(newID)
	if err := l.metas.Insert(ctx, &models.ItineraryMeta{
		ItineraryID:  newOID,
		DuplicatedBy: []string{},
		SavedBy:      []string{},
	}); err != nil {
		return "", fmt.Errorf("insert duplicate meta: %w", err)
	}
	if err := l.metas.AddDuplicatedBy(ctx, id, userID); err != nil {
		return "", err
	}
	return newID, nil
}

// Save toggles the bookmark for userID and invalidates the most-saved
// ranking so the next read rebuilds it.
func (l *Lifecycle) Save(ctx context.Context, itineraryID, userID string, saved bool) error {
	if err := l.metas.SetSaved(ctx, itineraryID, userID, saved); err != nil {
		return err
	}
	rdx.Del(ctx, mostSavedCacheKey)
	return nil
}

// Detail returns the itinerary with its meta, bumping the view counter.
func (l *Lifecycle) Detail(ctx context.Context, id string) (*models.Itinerary, *models.ItineraryMeta, error) {
	it, err := l.itins.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := l.metas.IncrementViews(ctx, id); err != nil {
		return nil, nil, err
	}
	meta, err := l.metas.GetByItineraryID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return it, meta, nil
}
