package itinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"wayfare/admin"
	"wayfare/apperr"
	"wayfare/assistant"
	"wayfare/models"
	"wayfare/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskRunner is the detached background executor behind submit/promote.
type TaskRunner interface {
	Enqueue(name string, fn func(ctx context.Context) error) error
}

// EventGetter resolves the event pinned into an event-triggered generation.
type EventGetter interface {
	GetByID(ctx context.Context, id string) (*models.Event, error)
}

// CityWarmer pre-resolves city metadata; failures must stay internal.
type CityWarmer interface {
	Warm(ctx context.Context, city string) error
}

const longResponseMaxTokens = 8192

// RequestPipeline orchestrates day-by-day itinerary generation: it validates
// and persists the request, runs the sequential day loop detached from the
// submitting call, and promotes completed requests into itineraries.
type RequestPipeline struct {
	requests RequestStore
	itins    Store
	metas    MetaStore
	flags    admin.Flags
	gateway  assistant.Gateway
	runner   TaskRunner
	events   EventGetter
	cities   CityWarmer
	docs     *DocsAdvisory

	dayTimeout time.Duration
	now        func() time.Time
}

func NewRequestPipeline(
	requests RequestStore,
	itins Store,
	metas MetaStore,
	flags admin.Flags,
	gateway assistant.Gateway,
	runner TaskRunner,
	events EventGetter,
	cities CityWarmer,
	docs *DocsAdvisory,
) *RequestPipeline {
	return &RequestPipeline{
		requests:   requests,
		itins:      itins,
		metas:      metas,
		flags:      flags,
		gateway:    gateway,
		runner:     runner,
		events:     events,
		cities:     cities,
		docs:       docs,
		dayTimeout: 2 * time.Minute,
		now:        time.Now,
	}
}

// Submit validates the request, persists it in PENDING state and schedules
// the generation loop. It returns the request id before any day has been
// generated; callers observe progress by polling the request status.
func (p *RequestPipeline) Submit(ctx context.Context, userID string, req *models.ItineraryRequest, eventID string) (string, error) {
	req.UserID = userID
	// The schedule and reminder queries match whole days, so the stored
	// window must sit on UTC midnight regardless of what the client sent.
	req.StartDate = utils.MidnightUTC(req.StartDate)
	req.EndDate = utils.MidnightUTC(req.EndDate)
	if err := req.Validate(); err != nil {
		return "", err
	}

	if !p.flags.CanGenerateItinerary(ctx) {
		return "", apperr.ErrGenerationDisabled
	}
	today := utils.MidnightUTC(p.now().UTC())
	if req.StartDate.Before(today) {
		return "", apperr.ErrDateNotValid
	}

	initialPrompt, err := p.initialUserPrompt(ctx, req, eventID)
	if err != nil {
		return "", err
	}

	req.Status = models.RequestPending
	req.Details = []models.DayPlan{}

	requestID, err := p.requests.Insert(ctx, req)
	if err != nil {
		return "", fmt.Errorf("insert itinerary request: %w", err)
	}

	conv := assistant.NewConversation(assistant.ItinerarySchema())
	conv.Add(assistant.RoleSystem, assistant.ItinerarySystemInstructions)
	conv.Add(assistant.RoleUser, initialPrompt)

	duration := req.TripDuration()
	if err := p.runner.Enqueue("itinerary-generation", func(taskCtx context.Context) error {
		return p.generateDayByDay(taskCtx, conv, requestID, duration)
	}); err != nil {
		return "", fmt.Errorf("schedule generation: %w", err)
	}

	// Warm the city cache so the result page has metadata ready. Strictly
	// best-effort: the main pipeline never depends on it.
	if p.cities != nil {
		city := req.City
		if err := p.runner.Enqueue("city-meta-warmup", func(taskCtx context.Context) error {
			return p.cities.Warm(taskCtx, city)
		}); err != nil {
			log.Printf("[pipeline] city warmup not scheduled: %v", err)
		}
	}

	return requestID, nil
}

func (p *RequestPipeline) initialUserPrompt(ctx context.Context, req *models.ItineraryRequest, eventID string) (string, error) {
	budget := models.Budgets[req.Budget]
	travellingWith := models.TravellingWith[req.TravellingWith]
	month := req.StartDate.Month().String()

	labels := make([]string, 0, len(req.InterestedIn))
	for _, act := range req.InterestedIn {
		labels = append(labels, models.Activities[act])
	}
	interestedIn := strings.Join(labels, ",")

	if eventID == "" {
		return assistant.ItineraryUserPrompt(
			month, req.City, travellingWith, req.TripDuration(),
			budget.Min, budget.Max, interestedIn), nil
	}

	event, err := p.events.GetByID(ctx, eventID)
	if err != nil {
		return "", err
	}
	return assistant.ItineraryUserEventPrompt(
		month, req.City, travellingWith, req.TripDuration(),
		budget.Min, budget.Max, interestedIn,
		assistant.PinnedActivity{
			Period:      event.Period,
			Title:       event.Title,
			Description: event.Description,
			Cost:        event.Cost,
			Accessible:  event.Accessible,
			Lat:         event.Coordinates.Lat,
			Lng:         event.Coordinates.Lng,
			AvgDuration: event.AvgDuration,
		}), nil
}

type dayResponse struct {
	Itinerary []models.DayPlan `json:"itinerary"`
}

// generateDayByDay runs the strictly sequential day loop. Each day's answer
// is checkpointed on the request document and fed back into the conversation
// so the next day sees the full history. The first failure flips the request
// to ERROR and stops the loop; there is no per-day retry or resumption.
func (p *RequestPipeline) generateDayByDay(ctx context.Context, conv *assistant.Conversation, requestID string, tripDuration int) error {
	log.Printf("[pipeline] request %s: starting generation of %d day(s)", requestID, tripDuration)

	for day := 1; day <= tripDuration; day++ {
		conv.Add(assistant.RoleUser, assistant.ItineraryDailyPrompt(day))

		raw, err := p.askDay(ctx, conv)
		if err == nil {
			var resp dayResponse
			if jsonErr := json.Unmarshal(raw, &resp); jsonErr != nil {
				err = fmt.Errorf("parse day %d: %w", day, jsonErr)
			} else if len(resp.Itinerary) == 0 {
				err = fmt.Errorf("day %d: empty itinerary", day)
			} else if appendErr := p.requests.AppendDay(ctx, requestID, resp.Itinerary[0]); appendErr != nil {
				err = fmt.Errorf("append day %d: %w", day, appendErr)
			}
		}

		if err != nil {
			log.Printf("[pipeline] request %s: day %d failed: %v", requestID, day, err)
			if statusErr := p.requests.SetStatus(ctx, requestID, models.RequestError); statusErr != nil {
				log.Printf("[pipeline] request %s: mark error: %v", requestID, statusErr)
			}
			return err
		}

		conv.Add(assistant.RoleAssistant, string(raw))
		log.Printf("[pipeline] request %s: day %d completed", requestID, day)
	}

	if err := p.requests.SetStatus(ctx, requestID, models.RequestCompleted); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	log.Printf("[pipeline] request %s: generation completed", requestID)
	return nil
}

func (p *RequestPipeline) askDay(ctx context.Context, conv *assistant.Conversation) (json.RawMessage, error) {
	dayCtx, cancel := context.WithTimeout(ctx, p.dayTimeout)
	defer cancel()
	return p.gateway.AskLong(dayCtx, conv, longResponseMaxTokens)
}

// Promote converts a completed request into a durable itinerary with its
// meta record, deletes the staging request and kicks off the docs advisory
// detached. Requests that are still pending or errored cannot be promoted.
func (p *RequestPipeline) Promote(ctx context.Context, requestID string) (string, error) {
	req, err := p.requests.GetByID(ctx, requestID)
	if err != nil {
		return "", err
	}
	if req.Status != models.RequestCompleted {
		return "", apperr.ErrRequestNotCompleted
	}

	it := models.ItineraryFromRequest(req)
	itineraryID, err := p.itins.Insert(ctx, it)
	if err != nil {
		return "", fmt.Errorf("insert itinerary: %w", err)
	}

	itineraryOID, _ := primitive.ObjectIDFromHex(itineraryID)
	meta := &models.ItineraryMeta{
		ItineraryID:  itineraryOID,
		DuplicatedBy: []string{},
		SavedBy:      []string{},
	}
	if err := p.metas.Insert(ctx, meta); err != nil {
		return "", fmt.Errorf("insert itinerary meta: %w", err)
	}

	if err := p.requests.Delete(ctx, requestID); err != nil {
		return "", fmt.Errorf("delete itinerary request: %w", err)
	}

	if p.docs != nil {
		city, userID, startDate := it.City, it.UserID, it.StartDate
		if err := p.runner.Enqueue("docs-advisory", func(taskCtx context.Context) error {
			return p.docs.Advise(taskCtx, city, itineraryID, userID, startDate)
		}); err != nil {
			log.Printf("[pipeline] docs advisory not scheduled for %s: %v", itineraryID, err)
		}
	}

	log.Printf("[pipeline] request %s promoted to itinerary %s", requestID, itineraryID)
	return itineraryID, nil
}
