package itinerary

import (
	"context"
	"testing"
	"time"

	"wayfare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduledItinerary(t *testing.T, itins *fakeStore, start, end time.Time, status string) string {
	t.Helper()
	it := &models.Itinerary{
		City:                 "Lisbon",
		StartDate:            start,
		EndDate:              end,
		Budget:               "MEDIUM",
		TravellingWith:       "SOLO",
		UserID:               "owner-1",
		Status:               status,
		ReminderNotification: true,
		DocsNotification:     true,
		Details: []models.DayPlan{
			{Day: 1, Title: "Arrival", Stages: []models.Stage{{Period: "morning", Title: "Walk"}}},
			{Day: 2, Title: "Museums", Stages: []models.Stage{{Period: "morning", Title: "Museum"}}},
			{Day: 3, Title: "Departure", Stages: []models.Stage{{Period: "morning", Title: "Pack"}}},
		},
	}
	id, err := itins.Insert(context.Background(), it)
	require.NoError(t, err)
	return id
}

func testNotifier(itins *fakeStore, mail *fakeMailer, now time.Time) *Notifier {
	n := NewNotifier(itins, fakeTravelers{}, fakeUsers{}, mail)
	n.now = func() time.Time { return now }
	return n
}

func TestDailyScheduleMarksReadyOnStartDate(t *testing.T) {
	itins := newFakeStore()
	mail := &fakeMailer{}
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	id := scheduledItinerary(t, itins, start, start.AddDate(0, 0, 2), models.ItineraryPending)

	n := testNotifier(itins, mail, start.Add(6*time.Hour))
	n.RunDailySchedule(context.Background())

	it, err := itins.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.ItineraryReady, it.Status)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "ada@example.com", mail.sent[0].To)
	assert.Contains(t, mail.sent[0].Subject, "Day 1")
}

func TestDailyScheduleSendsCurrentDayPlanOnce(t *testing.T) {
	itins := newFakeStore()
	mail := &fakeMailer{}
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	scheduledItinerary(t, itins, start, start.AddDate(0, 0, 2), models.ItineraryReady)

	// Mid-trip, second day.
	n := testNotifier(itins, mail, start.AddDate(0, 0, 1).Add(7*time.Hour))
	n.RunDailySchedule(context.Background())
	require.Len(t, mail.sent, 1)
	assert.Contains(t, mail.sent[0].Subject, "Day 2")
	assert.Contains(t, mail.sent[0].Body, "Museums")

	// A re-run the same day stays quiet.
	n.RunDailySchedule(context.Background())
	assert.Len(t, mail.sent, 1)
}

func TestDailyScheduleCompletesOnEndDate(t *testing.T) {
	itins := newFakeStore()
	mail := &fakeMailer{}
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)
	id := scheduledItinerary(t, itins, start, end, models.ItineraryReady)

	n := testNotifier(itins, mail, end.Add(5*time.Hour))
	n.RunDailySchedule(context.Background())

	it, err := itins.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.ItineraryCompleted, it.Status)
}

func TestDailyScheduleNeverMovesStatusBackward(t *testing.T) {
	itins := newFakeStore()
	mail := &fakeMailer{}
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	// Single-day trip already completed by its owner before the run.
	id := scheduledItinerary(t, itins, start, start, models.ItineraryCompleted)

	n := testNotifier(itins, mail, start.Add(8*time.Hour))
	n.RunDailySchedule(context.Background())

	it, err := itins.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.ItineraryCompleted, it.Status)
}

func TestDailyScheduleSkipsOptedOutItineraries(t *testing.T) {
	itins := newFakeStore()
	mail := &fakeMailer{}
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	id := scheduledItinerary(t, itins, start, start.AddDate(0, 0, 2), models.ItineraryPending)
	require.NoError(t, itins.setReminderOptOut(id))

	n := testNotifier(itins, mail, start.Add(6*time.Hour))
	n.RunDailySchedule(context.Background())

	assert.Empty(t, mail.sent)
	it, err := itins.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.ItineraryPending, it.Status)
}

func TestDocsReminderMailsAtLeadTime(t *testing.T) {
	itins := newFakeStore()
	mail := &fakeMailer{}
	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	id := scheduledItinerary(t, itins, start, start.AddDate(0, 0, 2), models.ItineraryPending)
	require.NoError(t, itins.SetDocs(context.Background(), id, &models.Docs{
		Mandatory:   []models.DocsDetail{{Name: "Passport", Description: "Valid for 6 months"}},
		Recommended: []models.DocsDetail{{Name: "Insurance", Description: "Medical coverage"}},
	}))

	// 15 days before departure.
	n := testNotifier(itins, mail, time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC))
	n.RunDocsReminder(context.Background())

	require.Len(t, mail.sent, 1)
	assert.Contains(t, mail.sent[0].Body, "Passport")
	assert.Contains(t, mail.sent[0].Body, "Insurance")
}

func TestDocsReminderIgnoresOtherStartDates(t *testing.T) {
	itins := newFakeStore()
	mail := &fakeMailer{}
	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	id := scheduledItinerary(t, itins, start, start.AddDate(0, 0, 2), models.ItineraryPending)
	require.NoError(t, itins.SetDocs(context.Background(), id, &models.Docs{
		Mandatory: []models.DocsDetail{{Name: "Passport"}},
	}))

	// 14 days out, not the reminder day.
	n := testNotifier(itins, mail, time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC))
	n.RunDocsReminder(context.Background())

	assert.Empty(t, mail.sent)
}
