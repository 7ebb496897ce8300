package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"wayfare/apperr"
	"wayfare/db"
	"wayfare/models"
	"wayfare/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store reads events; GetByID is also the seam the generation pipeline uses
// to pin an event into an itinerary.
type Store struct{}

func NewStore() *Store { return &Store{} }

func (s *Store) GetByID(ctx context.Context, id string) (*models.Event, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("event", id)
	}

	var event models.Event
	err = db.EventsCollection.FindOne(ctx, bson.M{
		"_id":        objectID,
		"deleted_at": bson.M{"$exists": false},
	}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("event", id)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// FindUpcomingByActivities returns live events tagged with at least one of
// the given activities, soonest first. The newsletter run feeds each
// traveler's interests through here.
func (s *Store) FindUpcomingByActivities(ctx context.Context, activities []string, from time.Time) ([]models.Event, error) {
	filter := bson.M{
		"deleted_at":         bson.M{"$exists": false},
		"end_date":           bson.M{"$gte": from},
		"related_activities": bson.M{"$in": activities},
	}
	opts := options.Find().SetSort(bson.M{"start_date": 1})
	cursor, err := db.EventsCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	eventList := []models.Event{}
	if err := cursor.All(ctx, &eventList); err != nil {
		return nil, err
	}
	return eventList, nil
}

type eventRequest struct {
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	City              string             `json:"city"`
	Address           string             `json:"address"`
	Period            string             `json:"period"`
	Cost              string             `json:"cost"`
	Accessible        bool               `json:"accessible"`
	Coordinates       models.Coordinates `json:"coordinates"`
	AvgDuration       int                `json:"avg_duration"`
	RelatedActivities []string           `json:"related_activities"`
	StartDate         time.Time          `json:"start_date"`
	EndDate           time.Time          `json:"end_date"`
}

func (er *eventRequest) validate() error {
	if er.Title == "" || er.City == "" {
		return errors.New("title and city are required")
	}
	if er.EndDate.Before(er.StartDate) {
		return errors.New("end_date must be greater than or equal to start_date")
	}
	for _, act := range er.RelatedActivities {
		if _, ok := models.Activities[act]; !ok {
			return errors.New("invalid activity name: " + act)
		}
	}
	return nil
}

// POST /api/events
func Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body eventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := body.validate(); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	event := models.Event{
		Title:             body.Title,
		Description:       body.Description,
		City:              body.City,
		Address:           body.Address,
		Period:            body.Period,
		Cost:              body.Cost,
		Accessible:        body.Accessible,
		Coordinates:       body.Coordinates,
		AvgDuration:       body.AvgDuration,
		RelatedActivities: body.RelatedActivities,
		OrganizationID:    utils.GetUserIDFromRequest(r),
		StartDate:         body.StartDate,
		EndDate:           body.EndDate,
		CreatedAt:         time.Now().UTC(),
	}
	result, err := db.EventsCollection.InsertOne(ctx, event)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create event")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"id": result.InsertedID.(primitive.ObjectID).Hex()})
}

// GET /api/events/:id
func Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	event, err := NewStore().GetByID(ctx, ps.ByName("id"))
	if err != nil {
		if apperr.IsNotFound(err) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch event")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, event)
}

// GET /api/events?city=...&page_number=...&page_size=...
//
// Only upcoming events are listed; past ones stay queryable by id.
func List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var p models.Paginated
	p.PageNumber, _ = strconv.Atoi(r.URL.Query().Get("page_number"))
	p.PageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	p.Normalize()

	filter := bson.M{
		"deleted_at": bson.M{"$exists": false},
		"end_date":   bson.M{"$gte": utils.TodayUTC()},
	}
	if city := r.URL.Query().Get("city"); city != "" {
		filter["city"] = bson.M{"$regex": city, "$options": "i"}
	}

	total, err := db.EventsCollection.CountDocuments(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	opts := options.Find().
		SetSort(bson.M{"start_date": 1}).
		SetSkip(int64(p.Skip())).
		SetLimit(int64(p.PageSize))
	cursor, err := db.EventsCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	defer cursor.Close(ctx)

	eventList := []models.Event{}
	if err := cursor.All(ctx, &eventList); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, models.NewPaginatedResponse(eventList, int(total), p))
}

// ownedEvent enforces that the caller's organization published the event.
func ownedEvent(ctx context.Context, w http.ResponseWriter, r *http.Request, id string) *models.Event {
	event, err := NewStore().GetByID(ctx, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return nil
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch event")
		return nil
	}
	if event.OrganizationID != utils.GetUserIDFromRequest(r) {
		utils.RespondWithError(w, http.StatusForbidden, "Not your event")
		return nil
	}
	return event
}

// PUT /api/events/:id
func Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body eventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := body.validate(); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := ps.ByName("id")
	event := ownedEvent(ctx, w, r, id)
	if event == nil {
		return
	}

	_, err := db.EventsCollection.UpdateOne(ctx,
		bson.M{"_id": event.ID},
		bson.M{"$set": bson.M{
			"title":              body.Title,
			"description":        body.Description,
			"city":               body.City,
			"address":            body.Address,
			"period":             body.Period,
			"cost":               body.Cost,
			"accessible":         body.Accessible,
			"coordinates":        body.Coordinates,
			"avg_duration":       body.AvgDuration,
			"related_activities": body.RelatedActivities,
			"start_date":         body.StartDate,
			"end_date":           body.EndDate,
		}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update event")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"id": id})
}

// DELETE /api/events/:id
func Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := ps.ByName("id")
	event := ownedEvent(ctx, w, r, id)
	if event == nil {
		return
	}

	_, err := db.EventsCollection.UpdateOne(ctx,
		bson.M{"_id": event.ID},
		bson.M{"$set": bson.M{"deleted_at": time.Now().UTC()}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
