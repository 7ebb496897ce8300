package itinerary

import (
	"context"
	"errors"
	"time"

	"wayfare/apperr"
	"wayfare/db"
	"wayfare/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RequestStore persists the staging records of in-flight generations.
type RequestStore interface {
	Insert(ctx context.Context, req *models.ItineraryRequest) (string, error)
	GetByID(ctx context.Context, id string) (*models.ItineraryRequest, error)
	AppendDay(ctx context.Context, id string, day models.DayPlan) error
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

// Store persists durable itineraries. Reads exclude soft-deleted rows.
type Store interface {
	Insert(ctx context.Context, it *models.Itinerary) (string, error)
	GetByID(ctx context.Context, id string) (*models.Itinerary, error)
	UpdateFields(ctx context.Context, id string, upd *models.UpdateItineraryRequest) error
	SoftDelete(ctx context.Context, id string) error
	ShareWith(ctx context.Context, id string, users []string) error
	SetPublic(ctx context.Context, id string, public bool) error
	SetStatus(ctx context.Context, id, status string) error
	SetDocs(ctx context.Context, id string, docs *models.Docs) error
	SetLastNotified(ctx context.Context, id string, at time.Time) error
	FindForDailySchedule(ctx context.Context, today time.Time) ([]models.Itinerary, error)
	FindForDocsReminder(ctx context.Context, target time.Time) ([]models.Itinerary, error)
}

// MetaStore persists engagement counters per itinerary.
type MetaStore interface {
	Insert(ctx context.Context, meta *models.ItineraryMeta) error
	GetByItineraryID(ctx context.Context, itineraryID string) (*models.ItineraryMeta, error)
	SetSaved(ctx context.Context, itineraryID, userID string, saved bool) error
	AddDuplicatedBy(ctx context.Context, itineraryID, userID string) error
	IncrementViews(ctx context.Context, itineraryID string) error
}

func oid(kind, id string) (primitive.ObjectID, error) {
	parsed, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(kind, id)
	}
	return parsed, nil
}

// notDeleted excludes tombstoned rows from active reads.
func notDeleted(filter bson.M) bson.M {
	filter["deleted_at"] = bson.M{"$exists": false}
	return filter
}

// ---- requests ----

type MongoRequestStore struct{}

func NewMongoRequestStore() *MongoRequestStore { return &MongoRequestStore{} }

func (s *MongoRequestStore) Insert(ctx context.Context, req *models.ItineraryRequest) (string, error) {
	result, err := db.ItineraryRequestsCollection.InsertOne(ctx, req)
	if err != nil {
		return "", err
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *MongoRequestStore) GetByID(ctx context.Context, id string) (*models.ItineraryRequest, error) {
	objectID, err := oid("itinerary request", id)
	if err != nil {
		return nil, err
	}

	var req models.ItineraryRequest
	err = db.ItineraryRequestsCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("itinerary request", id)
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *MongoRequestStore) AppendDay(ctx context.Context, id string, day models.DayPlan) error {
	objectID, err := oid("itinerary request", id)
	if err != nil {
		return err
	}
	_, err = db.ItineraryRequestsCollection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$push": bson.M{"details": day}})
	return err
}

func (s *MongoRequestStore) SetStatus(ctx context.Context, id, status string) error {
	objectID, err := oid("itinerary request", id)
	if err != nil {
		return err
	}
	_, err = db.ItineraryRequestsCollection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status}})
	return err
}

func (s *MongoRequestStore) Delete(ctx context.Context, id string) error {
	objectID, err := oid("itinerary request", id)
	if err != nil {
		return err
	}
	_, err = db.ItineraryRequestsCollection.DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}

// ---- itineraries ----

type MongoStore struct{}

func NewMongoStore() *MongoStore { return &MongoStore{} }

func (s *MongoStore) Insert(ctx context.Context, it *models.Itinerary) (string, error) {
	result, err := db.ItinerariesCollection.InsertOne(ctx, it)
	if err != nil {
		return "", err
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*models.Itinerary, error) {
	objectID, err := oid("itinerary", id)
	if err != nil {
		return nil, err
	}

	var it models.Itinerary
	err = db.ItinerariesCollection.FindOne(ctx, notDeleted(bson.M{"_id": objectID})).Decode(&it)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("itinerary", id)
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *MongoStore) UpdateFields(ctx context.Context, id string, upd *models.UpdateItineraryRequest) error {
	objectID, err := oid("itinerary", id)
	if err != nil {
		return err
	}

	result, err := db.ItinerariesCollection.UpdateOne(ctx,
		notDeleted(bson.M{"_id": objectID}),
		bson.M{"$set": bson.M{
			"city":            upd.City,
			"start_date":      upd.StartDate,
			"end_date":        upd.EndDate,
			"budget":          upd.Budget,
			"travelling_with": upd.TravellingWith,
			"accessibility":   upd.Accessibility,
			"interested_in":   upd.InterestedIn,
			"details":         upd.Details,
			"updated_at":      time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("itinerary", id)
	}
	return nil
}

func (s *MongoStore) SoftDelete(ctx context.Context, id string) error {
	objectID, err := oid("itinerary", id)
	if err != nil {
		return err
	}

	result, err := db.ItinerariesCollection.UpdateOne(ctx,
		notDeleted(bson.M{"_id": objectID}),
		bson.M{"$set": bson.M{"deleted_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("itinerary", id)
	}
	return nil
}

// ShareWith uses $addToSet so re-sharing with the same user stays a no-op.
func (s *MongoStore) ShareWith(ctx context.Context, id string, users []string) error {
	objectID, err := oid("itinerary", id)
	if err != nil {
		return err
	}

	result, err := db.ItinerariesCollection.UpdateOne(ctx,
		notDeleted(bson.M{"_id": objectID}),
		bson.M{"$addToSet": bson.M{"shared_with": bson.M{"$each": users}}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("itinerary", id)
	}
	return nil
}

func (s *MongoStore) SetPublic(ctx context.Context, id string, public bool) error {
	return s.setField(ctx, id, "is_public", public)
}

func (s *MongoStore) SetStatus(ctx context.Context, id, status string) error {
	return s.setField(ctx, id, "status", status)
}

func (s *MongoStore) SetDocs(ctx context.Context, id string, docs *models.Docs) error {
	return s.setField(ctx, id, "docs", docs)
}

func (s *MongoStore) SetLastNotified(ctx context.Context, id string, at time.Time) error {
	return s.setField(ctx, id, "last_notified_at", at)
}

func (s *MongoStore) setField(ctx context.Context, id, field string, value any) error {
	objectID, err := oid("itinerary", id)
	if err != nil {
		return err
	}

	result, err := db.ItinerariesCollection.UpdateOne(ctx,
		notDeleted(bson.M{"_id": objectID}),
		bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("itinerary", id)
	}
	return nil
}

// FindForDailySchedule returns itineraries whose window spans today and that
// opted into reminder notifications.
func (s *MongoStore) FindForDailySchedule(ctx context.Context, today time.Time) ([]models.Itinerary, error) {
	filter := notDeleted(bson.M{
		"start_date":            bson.M{"$lte": today},
		"end_date":              bson.M{"$gte": today},
		"reminder_notification": true,
	})
	return s.findAll(ctx, filter)
}

// FindForDocsReminder returns itineraries starting exactly on the target day
// that have a docs checklist and opted into docs notifications.
func (s *MongoStore) FindForDocsReminder(ctx context.Context, target time.Time) ([]models.Itinerary, error) {
	filter := notDeleted(bson.M{
		"start_date":        target,
		"docs":              bson.M{"$exists": true},
		"docs_notification": true,
	})
	return s.findAll(ctx, filter)
}

func (s *MongoStore) findAll(ctx context.Context, filter bson.M) ([]models.Itinerary, error) {
	cursor, err := db.ItinerariesCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var itineraries []models.Itinerary
	if err := cursor.All(ctx, &itineraries); err != nil {
		return nil, err
	}
	return itineraries, nil
}

// ---- metas ----

type MongoMetaStore struct{}

func NewMongoMetaStore() *MongoMetaStore { return &MongoMetaStore{} }

func (s *MongoMetaStore) Insert(ctx context.Context, meta *models.ItineraryMeta) error {
	_, err := db.ItineraryMetasCollection.InsertOne(ctx, meta)
	return err
}

func (s *MongoMetaStore) GetByItineraryID(ctx context.Context, itineraryID string) (*models.ItineraryMeta, error) {
	objectID, err := oid("itinerary meta", itineraryID)
	if err != nil {
		return nil, err
	}

	var meta models.ItineraryMeta
	err = db.ItineraryMetasCollection.FindOne(ctx, bson.M{"itinerary_id": objectID}).Decode(&meta)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("itinerary meta", itineraryID)
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *MongoMetaStore) SetSaved(ctx context.Context, itineraryID, userID string, saved bool) error {
	objectID, err := oid("itinerary meta", itineraryID)
	if err != nil {
		return err
	}

	var update bson.M
	if saved {
		update = bson.M{"$addToSet": bson.M{"saved_by": userID}}
	} else {
		update = bson.M{"$pull": bson.M{"saved_by": userID}}
	}

	result, err := db.ItineraryMetasCollection.UpdateOne(ctx, bson.M{"itinerary_id": objectID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("itinerary meta", itineraryID)
	}
	return nil
}

func (s *MongoMetaStore) AddDuplicatedBy(ctx context.Context, itineraryID, userID string) error {
	objectID, err := oid("itinerary meta", itineraryID)
	if err != nil {
		return err
	}
	_, err = db.ItineraryMetasCollection.UpdateOne(ctx,
		bson.M{"itinerary_id": objectID},
		bson.M{"$addToSet": bson.M{"duplicated_by": userID}})
	return err
}

func (s *MongoMetaStore) IncrementViews(ctx context.Context, itineraryID string) error {
	objectID, err := oid("itinerary meta", itineraryID)
	if err != nil {
		return err
	}
	_, err = db.ItineraryMetasCollection.UpdateOne(ctx,
		bson.M{"itinerary_id": objectID},
		bson.M{"$inc": bson.M{"views": 1}})
	return err
}
