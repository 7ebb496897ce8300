package citymeta

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"wayfare/apperr"
	"wayfare/assistant"
	"wayfare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCityStore struct {
	mu      sync.Mutex
	metas   map[string]*models.CityMeta
	inserts int
}

func newFakeCityStore() *fakeCityStore {
	return &fakeCityStore{metas: map[string]*models.CityMeta{}}
}

func (s *fakeCityStore) FindByName(ctx context.Context, name string) (*models.CityMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.metas[name]
	if !ok {
		return nil, apperr.NotFound("city meta", name)
	}
	copied := *meta
	return &copied, nil
}

func (s *fakeCityStore) Insert(ctx context.Context, meta *models.CityMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	s.metas[meta.Name] = meta
	return nil
}

type countingGateway struct {
	calls    int
	response json.RawMessage
}

func (g *countingGateway) Ask(ctx context.Context, conv *assistant.Conversation) (json.RawMessage, error) {
	g.calls++
	return g.response, nil
}

func (g *countingGateway) AskLong(ctx context.Context, conv *assistant.Conversation, maxTokens int) (json.RawMessage, error) {
	return g.Ask(ctx, conv)
}

type countingFinder struct {
	calls int
}

func (f *countingFinder) FindImage(ctx context.Context, query string) (models.UnsplashImage, error) {
	f.calls++
	return models.UnsplashImage{ID: "img-1", URL: "https://images.example/lisbon.jpg"}, nil
}

func descriptionPayload() json.RawMessage {
	raw, _ := json.Marshal(models.CityDescription{
		Name:        "Lisbon",
		Country:     "Portugal",
		Description: "Hilly coastal capital of Portugal.",
		Lat:         38.7223,
		Lng:         -9.1393,
	})
	return raw
}

func TestResolveBuildsRecordOnFirstLookup(t *testing.T) {
	store := newFakeCityStore()
	gateway := &countingGateway{response: descriptionPayload()}
	finder := &countingFinder{}
	r := NewResolver(store, gateway, finder)

	meta, err := r.Resolve(context.Background(), "Lisbon")
	require.NoError(t, err)

	assert.Equal(t, "lisbon", meta.Name)
	assert.Equal(t, "Portugal", meta.Country)
	assert.Equal(t, 38.7223, meta.Coordinates.Lat)
	assert.Equal(t, "https://images.example/lisbon.jpg", meta.Image.URL)
	assert.Equal(t, 1, store.inserts)
}

func TestResolveConsultsCollaboratorsOnlyOnce(t *testing.T) {
	store := newFakeCityStore()
	gateway := &countingGateway{response: descriptionPayload()}
	finder := &countingFinder{}
	r := NewResolver(store, gateway, finder)

	_, err := r.Resolve(context.Background(), "Lisbon")
	require.NoError(t, err)

	// Different casing and spacing still hits the same record.
	meta, err := r.Resolve(context.Background(), "  LISBON ")
	require.NoError(t, err)
	assert.Equal(t, "lisbon", meta.Name)

	assert.Equal(t, 1, gateway.calls)
	assert.Equal(t, 1, finder.calls)
	assert.Equal(t, 1, store.inserts)
}

func TestResolveRejectsEmptyDescription(t *testing.T) {
	store := newFakeCityStore()
	gateway := &countingGateway{response: json.RawMessage(`{"name":"Lisbon","country":"Portugal","description":"","lat":0,"lng":0}`)}
	r := NewResolver(store, gateway, &countingFinder{})

	_, err := r.Resolve(context.Background(), "Lisbon")
	assert.ErrorIs(t, err, apperr.ErrCityDescriptionNotFound)
	assert.Zero(t, store.inserts)
}

func TestEncodeCityName(t *testing.T) {
	assert.Equal(t, "new_york", models.EncodeCityName(" New York "))
	assert.Equal(t, "lisbon", models.EncodeCityName("LISBON"))
}
