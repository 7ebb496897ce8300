package itinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"wayfare/apperr"
	"wayfare/assistant"
	"wayfare/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory doubles for the store and collaborator seams.

type fakeRequestStore struct {
	mu       sync.Mutex
	requests map[string]*models.ItineraryRequest
	statuses []string
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{requests: map[string]*models.ItineraryRequest{}}
}

func (s *fakeRequestStore) Insert(ctx context.Context, req *models.ItineraryRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.ID = primitive.NewObjectID()
	s.requests[req.ID.Hex()] = req
	return req.ID.Hex(), nil
}

func (s *fakeRequestStore) GetByID(ctx context.Context, id string) (*models.ItineraryRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, apperr.NotFound("itinerary request", id)
	}
	copied := *req
	return &copied, nil
}

func (s *fakeRequestStore) AppendDay(ctx context.Context, id string, day models.DayPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return apperr.NotFound("itinerary request", id)
	}
	req.Details = append(req.Details, day)
	return nil
}

func (s *fakeRequestStore) SetStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return apperr.NotFound("itinerary request", id)
	}
	req.Status = status
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *fakeRequestStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[id]; !ok {
		return apperr.NotFound("itinerary request", id)
	}
	delete(s.requests, id)
	return nil
}

type fakeStore struct {
	mu          sync.Mutex
	itineraries map[string]*models.Itinerary
}

func newFakeStore() *fakeStore {
	return &fakeStore{itineraries: map[string]*models.Itinerary{}}
}

func (s *fakeStore) Insert(ctx context.Context, it *models.Itinerary) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it.ID = primitive.NewObjectID()
	s.itineraries[it.ID.Hex()] = it
	return it.ID.Hex(), nil
}

func (s *fakeStore) get(id string) (*models.Itinerary, error) {
	it, ok := s.itineraries[id]
	if !ok || it.DeletedAt != nil {
		return nil, apperr.NotFound("itinerary", id)
	}
	return it, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (*models.Itinerary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.get(id)
	if err != nil {
		return nil, err
	}
	copied := *it
	return &copied, nil
}

func (s *fakeStore) UpdateFields(ctx context.Context, id string, upd *models.UpdateItineraryRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.get(id)
	if err != nil {
		return err
	}
	it.City = upd.City
	it.StartDate = upd.StartDate
	it.EndDate = upd.EndDate
	it.Budget = upd.Budget
	it.TravellingWith = upd.TravellingWith
	it.Accessibility = upd.Accessibility
	it.InterestedIn = upd.InterestedIn
	it.Details = upd.Details
	now := time.Now().UTC()
	it.UpdatedAt = &now
	return nil
}

func (s *fakeStore) SoftDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.get(id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	it.DeletedAt = &now
	return nil
}

func (s *fakeStore) ShareWith(ctx context.Context, id string, users []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.get(id)
	if err != nil {
		return err
	}
	for _, u := range users {
		exists := false
		for _, existing := range it.SharedWith {
			if existing == u {
				exists = true
				break
			}
		}
		if !exists {
			it.SharedWith = append(it.SharedWith, u)
		}
	}
	return nil
}

func (s *fakeStore) SetPublic(ctx context.Context, id string, public bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.get(id)
	if err != nil {
		return err
	}
	it.IsPublic = public
	return nil
}

func (s *fakeStore) SetStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.get(id)
	if err != nil {
		return err
	}
	it.Status = status
	return nil
}

func (s *fakeStore) SetDocs(ctx context.Context, id string, docs *models.Docs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.get(id)
	if err != nil {
		return err
	}
	it.Docs = docs
	return nil
}

func (s *fakeStore) SetLastNotified(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.get(id)
	if err != nil {
		return err
	}
	it.LastNotifiedAt = &at
	return nil
}

func (s *fakeStore) setReminderOptOut(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.get(id)
	if err != nil {
		return err
	}
	it.ReminderNotification = false
	return nil
}

func (s *fakeStore) FindForDailySchedule(ctx context.Context, today time.Time) ([]models.Itinerary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Itinerary
	for _, it := range s.itineraries {
		if it.DeletedAt != nil || !it.ReminderNotification {
			continue
		}
		if !it.StartDate.After(today) && !it.EndDate.Before(today) {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (s *fakeStore) FindForDocsReminder(ctx context.Context, target time.Time) ([]models.Itinerary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Itinerary
	for _, it := range s.itineraries {
		if it.DeletedAt != nil || !it.DocsNotification || it.Docs == nil {
			continue
		}
		if it.StartDate.Equal(target) {
			out = append(out, *it)
		}
	}
	return out, nil
}

type fakeMetaStore struct {
	mu    sync.Mutex
	metas map[string]*models.ItineraryMeta
}

func newFakeMetaStore() *fakeMetaStore {
	return &fakeMetaStore{metas: map[string]*models.ItineraryMeta{}}
}

func (s *fakeMetaStore) Insert(ctx context.Context, meta *models.ItineraryMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metas[meta.ItineraryID.Hex()] = meta
	return nil
}

func (s *fakeMetaStore) GetByItineraryID(ctx context.Context, itineraryID string) (*models.ItineraryMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.metas[itineraryID]
	if !ok {
		return nil, apperr.NotFound("itinerary meta", itineraryID)
	}
	copied := *meta
	return &copied, nil
}

func (s *fakeMetaStore) SetSaved(ctx context.Context, itineraryID, userID string, saved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.metas[itineraryID]
	if !ok {
		return apperr.NotFound("itinerary meta", itineraryID)
	}
	if saved {
		meta.SavedBy = append(meta.SavedBy, userID)
		return nil
	}
	kept := meta.SavedBy[:0]
	for _, u := range meta.SavedBy {
		if u != userID {
			kept = append(kept, u)
		}
	}
	meta.SavedBy = kept
	return nil
}

func (s *fakeMetaStore) AddDuplicatedBy(ctx context.Context, itineraryID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.metas[itineraryID]
	if !ok {
		return apperr.NotFound("itinerary meta", itineraryID)
	}
	meta.DuplicatedBy = append(meta.DuplicatedBy, userID)
	return nil
}

func (s *fakeMetaStore) IncrementViews(ctx context.Context, itineraryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.metas[itineraryID]
	if !ok {
		return apperr.NotFound("itinerary meta", itineraryID)
	}
	meta.Views++
	return nil
}

// fakeGateway serves canned answers in order; a nil entry yields an error.
type fakeGateway struct {
	mu        sync.Mutex
	responses []json.RawMessage
	calls     int
}

func (g *fakeGateway) next() (json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if len(g.responses) == 0 {
		return nil, fmt.Errorf("no response scripted for call %d", g.calls)
	}
	resp := g.responses[0]
	g.responses = g.responses[1:]
	if resp == nil {
		return nil, fmt.Errorf("scripted failure on call %d", g.calls)
	}
	return resp, nil
}

func (g *fakeGateway) Ask(ctx context.Context, conv *assistant.Conversation) (json.RawMessage, error) {
	return g.next()
}

func (g *fakeGateway) AskLong(ctx context.Context, conv *assistant.Conversation, maxTokens int) (json.RawMessage, error) {
	return g.next()
}

// syncRunner executes tasks inline so tests observe the final state directly.
type syncRunner struct {
	names []string
}

func (r *syncRunner) Enqueue(name string, fn func(ctx context.Context) error) error {
	r.names = append(r.names, name)
	fn(context.Background())
	return nil
}

// deferredRunner captures tasks without running them.
type deferredRunner struct {
	tasks []func(ctx context.Context) error
}

func (r *deferredRunner) Enqueue(name string, fn func(ctx context.Context) error) error {
	r.tasks = append(r.tasks, fn)
	return nil
}

func (r *deferredRunner) runAll() {
	for _, fn := range r.tasks {
		fn(context.Background())
	}
	r.tasks = nil
}

type fakeFlags struct{ enabled bool }

func (f fakeFlags) CanGenerateItinerary(ctx context.Context) bool { return f.enabled }

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

type fakeTravelers struct{}

func (fakeTravelers) GetByUserID(ctx context.Context, userID string) (*models.Traveler, error) {
	return &models.Traveler{UserID: userID, FirstName: "Ada", LastName: "Lovelace"}, nil
}

type fakeUsers struct{}

func (fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return &models.User{Email: "ada@example.com", Roles: []string{models.RoleTraveler}}, nil
}

func dayPayload(day int) json.RawMessage {
	plan := map[string]any{
		"itinerary": []map[string]any{{
			"day":   day,
			"title": fmt.Sprintf("Day %d", day),
			"stages": []map[string]any{{
				"period":       "morning",
				"title":        "Walk",
				"description":  "A walk in the old town",
				"cost":         "free",
				"accessible":   true,
				"coordinates":  map[string]float64{"lat": 1, "lng": 2},
				"avg_duration": 90,
			}},
		}},
	}
	raw, _ := json.Marshal(plan)
	return raw
}

func validRequest(start, end time.Time) *models.ItineraryRequest {
	return &models.ItineraryRequest{
		City:           "Lisbon",
		StartDate:      start,
		EndDate:        end,
		Budget:         "MEDIUM",
		TravellingWith: "COUPLE",
		InterestedIn:   []string{"FOOD_EXPLORATION", "CITY_SIGHTSEEING"},
	}
}
