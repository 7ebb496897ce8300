package itinerary

import (
	"context"
	"testing"
	"time"

	"wayfare/apperr"
	"wayfare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedItinerary(t *testing.T, itins *fakeStore, metas *fakeMetaStore, status string) string {
	t.Helper()
	it := &models.Itinerary{
		City:                 "Lisbon",
		StartDate:            time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:              time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
		Budget:               "MEDIUM",
		TravellingWith:       "COUPLE",
		InterestedIn:         []string{"FOOD_EXPLORATION"},
		UserID:               "owner-1",
		Details:              []models.DayPlan{{Day: 1, Title: "Day 1"}, {Day: 2, Title: "Day 2"}, {Day: 3, Title: "Day 3"}, {Day: 4, Title: "Day 4"}},
		SharedWith:           []string{"friend-1"},
		Status:               status,
		IsPublic:             true,
		DocsNotification:     true,
		ReminderNotification: true,
	}
	id, err := itins.Insert(context.Background(), it)
	require.NoError(t, err)
	require.NoError(t, metas.Insert(context.Background(), &models.ItineraryMeta{
		ItineraryID:  it.ID,
		SavedBy:      []string{},
		DuplicatedBy: []string{},
	}))
	return id
}

func testLifecycle(itins *fakeStore, metas *fakeMetaStore) *Lifecycle {
	l := NewLifecycle(itins, metas)
	l.now = func() time.Time { return time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC) }
	return l
}

func validUpdate() *models.UpdateItineraryRequest {
	return &models.UpdateItineraryRequest{
		City:           "Porto",
		StartDate:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC),
		Budget:         "LOW",
		TravellingWith: "SOLO",
	}
}

func TestUpdateOnlyWhilePending(t *testing.T) {
	itins := newFakeStore()
	metas := newFakeMetaStore()
	l := testLifecycle(itins, metas)

	pendingID := storedItinerary(t, itins, metas, models.ItineraryPending)
	require.NoError(t, l.Update(context.Background(), pendingID, validUpdate()))

	it, err := itins.GetByID(context.Background(), pendingID)
	require.NoError(t, err)
	assert.Equal(t, "Porto", it.City)
	assert.NotNil(t, it.UpdatedAt)

	for _, status := range []string{models.ItineraryReady, models.ItineraryCompleted} {
		id := storedItinerary(t, itins, metas, status)
		err := l.Update(context.Background(), id, validUpdate())
		assert.ErrorIs(t, err, apperr.ErrCannotUpdateItinerary, "status %s", status)
	}
}

func TestUpdateStoresDatesAtMidnight(t *testing.T) {
	itins := newFakeStore()
	metas := newFakeMetaStore()
	l := testLifecycle(itins, metas)
	id := storedItinerary(t, itins, metas, models.ItineraryPending)

	upd := validUpdate()
	upd.StartDate = time.Date(2026, 4, 1, 18, 45, 0, 0, time.UTC)
	upd.EndDate = time.Date(2026, 4, 3, 7, 0, 0, 0, time.UTC)
	require.NoError(t, l.Update(context.Background(), id, upd))

	it, err := itins.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), it.StartDate)
	assert.Equal(t, time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC), it.EndDate)
}

func TestUpdateValidatesBeforeTouchingStore(t *testing.T) {
	itins := newFakeStore()
	metas := newFakeMetaStore()
	l := testLifecycle(itins, metas)
	id := storedItinerary(t, itins, metas, models.ItineraryPending)

	upd := validUpdate()
	upd.TravellingWith = "ALIENS"
	assert.Error(t, l.Update(context.Background(), id, upd))

	it, err := itins.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", it.City)
}

func TestDeleteHidesItinerary(t *testing.T) {
	itins := newFakeStore()
	metas := newFakeMetaStore()
	l := testLifecycle(itins, metas)
	id := storedItinerary(t, itins, metas, models.ItineraryPending)

	require.NoError(t, l.Delete(context.Background(), id))

	_, err := l.Get(context.Background(), id)
	assert.True(t, apperr.IsNotFound(err))
}

func TestShareWithRequiresUsers(t *testing.T) {
	itins := newFakeStore()
	metas := newFakeMetaStore()
	l := testLifecycle(itins, metas)
	id := storedItinerary(t, itins, metas, models.ItineraryPending)

	assert.Error(t, l.ShareWith(context.Background(), id, nil))

	require.NoError(t, l.ShareWith(context.Background(), id, []string{"friend-2", "friend-1"}))
	it, err := itins.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"friend-1", "friend-2"}, it.SharedWith)
}

func TestDuplicateStartsTomorrowWithSameDuration(t *testing.T) {
	itins := newFakeStore()
	metas := newFakeMetaStore()
	l := testLifecycle(itins, metas)
	origID := storedItinerary(t, itins, metas, models.ItineraryCompleted)

	newID, err := l.Duplicate(context.Background(), "copier-1", origID)
	require.NoError(t, err)
	require.NotEqual(t, origID, newID)

	copied, err := itins.GetByID(context.Background(), newID)
	require.NoError(t, err)

	// now is fixed at 2026-03-01, so the copy runs 03-02 through 03-05.
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), copied.StartDate)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), copied.EndDate)
	assert.Equal(t, 4, copied.TripDuration())

	assert.Equal(t, "copier-1", copied.UserID)
	assert.Equal(t, models.ItineraryPending, copied.Status)
	assert.Empty(t, copied.SharedWith)
	assert.False(t, copied.IsPublic)
	assert.False(t, copied.DocsNotification, "docs opt-in must not carry over to the copy")
	assert.False(t, copied.ReminderNotification, "reminder opt-in must not carry over to the copy")
	assert.Len(t, copied.Details, 4)

	origMeta, err := metas.GetByItineraryID(context.Background(), origID)
	require.NoError(t, err)
	assert.Contains(t, origMeta.DuplicatedBy, "copier-1")

	newMeta, err := metas.GetByItineraryID(context.Background(), newID)
	require.NoError(t, err)
	assert.Empty(t, newMeta.DuplicatedBy)
	assert.Empty(t, newMeta.SavedBy)
}

func TestSaveTogglesBookmark(t *testing.T) {
	itins := newFakeStore()
	metas := newFakeMetaStore()
	l := testLifecycle(itins, metas)
	id := storedItinerary(t, itins, metas, models.ItineraryPending)

	require.NoError(t, l.Save(context.Background(), id, "reader-1", true))
	meta, err := metas.GetByItineraryID(context.Background(), id)
	require.NoError(t, err)
	assert.Contains(t, meta.SavedBy, "reader-1")

	require.NoError(t, l.Save(context.Background(), id, "reader-1", false))
	meta, err = metas.GetByItineraryID(context.Background(), id)
	require.NoError(t, err)
	assert.NotContains(t, meta.SavedBy, "reader-1")
}

func TestDetailCountsViews(t *testing.T) {
	itins := newFakeStore()
	metas := newFakeMetaStore()
	l := testLifecycle(itins, metas)
	id := storedItinerary(t, itins, metas, models.ItineraryPending)

	_, meta, err := l.Detail(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, meta.Views)

	_, meta, err = l.Detail(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Views)
}
