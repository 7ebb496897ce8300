package itinerary

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"wayfare/apperr"
	"wayfare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docsPayload() json.RawMessage {
	raw, _ := json.Marshal(map[string]any{
		"docs": []map[string]any{{
			"mandatory": []map[string]any{
				{"name": "Passport", "description": "Valid for 6 months", "done": false},
			},
			"recommended": []map[string]any{
				{"name": "Insurance", "description": "Medical coverage", "done": false},
			},
		}},
	})
	return raw
}

func TestAdviseStoresChecklistAndMailsOwner(t *testing.T) {
	itins := newFakeStore()
	mail := &fakeMailer{}
	gateway := &fakeGateway{responses: []json.RawMessage{docsPayload()}}
	d := NewDocsAdvisory(gateway, itins, fakeTravelers{}, fakeUsers{}, mail)

	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	id, err := itins.Insert(context.Background(), &models.Itinerary{
		City: "Tokyo", UserID: "owner-1", StartDate: start, EndDate: start,
		Status: models.ItineraryPending,
	})
	require.NoError(t, err)

	require.NoError(t, d.Advise(context.Background(), "Tokyo", id, "owner-1", start))

	it, err := itins.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, it.Docs)
	assert.Equal(t, "Passport", it.Docs.Mandatory[0].Name)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "ada@example.com", mail.sent[0].To)
	assert.Contains(t, mail.sent[0].Body, "Passport")
}

func TestAdviseFailsOnEmptyChecklist(t *testing.T) {
	itins := newFakeStore()
	gateway := &fakeGateway{responses: []json.RawMessage{json.RawMessage(`{"docs":[]}`)}}
	d := NewDocsAdvisory(gateway, itins, fakeTravelers{}, fakeUsers{}, &fakeMailer{})

	err := d.Advise(context.Background(), "Tokyo", "ignored", "owner-1", time.Now())
	assert.ErrorIs(t, err, apperr.ErrDocsNotFound)
}

func TestAdviseLeavesItineraryIntactOnGatewayFailure(t *testing.T) {
	itins := newFakeStore()
	gateway := &fakeGateway{}
	d := NewDocsAdvisory(gateway, itins, fakeTravelers{}, fakeUsers{}, &fakeMailer{})

	start := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	id, err := itins.Insert(context.Background(), &models.Itinerary{
		City: "Tokyo", UserID: "owner-1", StartDate: start, EndDate: start,
		Status: models.ItineraryPending,
	})
	require.NoError(t, err)

	assert.Error(t, d.Advise(context.Background(), "Tokyo", id, "owner-1", start))

	it, err := itins.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, it.Docs)
}
