package citymeta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"wayfare/apperr"
	"wayfare/assistant"
	"wayfare/db"
	"wayfare/models"
	"wayfare/rdx"
	"wayfare/unsplash"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store persists the resolved city records.
type Store interface {
	FindByName(ctx context.Context, name string) (*models.CityMeta, error)
	Insert(ctx context.Context, meta *models.CityMeta) error
}

type MongoStore struct{}

func NewMongoStore() *MongoStore { return &MongoStore{} }

func (s *MongoStore) FindByName(ctx context.Context, name string) (*models.CityMeta, error) {
	var meta models.CityMeta
	err := db.CityMetasCollection.FindOne(ctx, bson.M{"name": name}).Decode(&meta)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("city meta", name)
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *MongoStore) Insert(ctx context.Context, meta *models.CityMeta) error {
	_, err := db.CityMetasCollection.InsertOne(ctx, meta)
	// The unique index on name absorbs the race between two concurrent
	// resolutions of the same city.
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

const cacheKeyPrefix = "citymeta:"

// Resolver answers city lookups from cache first and builds missing records
// from its two collaborators, the image search and the assistant.
type Resolver struct {
	store   Store
	gateway assistant.Gateway
	images  unsplash.Finder
}

func NewResolver(store Store, gateway assistant.Gateway, images unsplash.Finder) *Resolver {
	return &Resolver{store: store, gateway: gateway, images: images}
}

// Resolve returns the meta record for city, normalizing the name first.
// Redis fronts the mongo record; the collaborators are only consulted when
// neither layer has the city yet, so each city pays the external calls once.
func (r *Resolver) Resolve(ctx context.Context, city string) (*models.CityMeta, error) {
	name := models.EncodeCityName(city)
	if name == "" {
		return nil, fmt.Errorf("empty city name")
	}

	if cached := rdx.Get(ctx, cacheKeyPrefix+name); cached != "" {
		var meta models.CityMeta
		if err := json.Unmarshal([]byte(cached), &meta); err == nil {
			return &meta, nil
		}
	}

	meta, err := r.store.FindByName(ctx, name)
	if err == nil {
		r.cache(ctx, name, meta)
		return meta, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	meta, err = r.build(ctx, city)
	if err != nil {
		return nil, err
	}
	if err := r.store.Insert(ctx, meta); err != nil {
		return nil, fmt.Errorf("store city meta: %w", err)
	}
	r.cache(ctx, name, meta)
	return meta, nil
}

func (r *Resolver) build(ctx context.Context, city string) (*models.CityMeta, error) {
	image, err := r.images.FindImage(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("city image: %w", err)
	}

	conv := assistant.NewConversation(assistant.CityDescriptionSchema())
	conv.Add(assistant.RoleSystem, assistant.CityDescriptionSystemInstructions)
	conv.Add(assistant.RoleUser, assistant.CityDescriptionUserPrompt(city))

	raw, err := r.gateway.Ask(ctx, conv)
	if err != nil {
		return nil, fmt.Errorf("city description: %w", err)
	}

	var desc models.CityDescription
	if err := json.Unmarshal(raw, &desc); err != nil {
		return nil, fmt.Errorf("parse city description: %w", err)
	}
	if desc.Description == "" {
		return nil, apperr.ErrCityDescriptionNotFound
	}
	if desc.Name == "" {
		desc.Name = city
	}
	return models.CityMetaFromSources(image, desc), nil
}

func (r *Resolver) cache(ctx context.Context, name string, meta *models.CityMeta) {
	encoded, err := json.Marshal(meta)
	if err != nil {
		return
	}
	rdx.Set(ctx, cacheKeyPrefix+name, string(encoded), 7*24*time.Hour)
}

// Warm resolves a city ahead of need. Used fire-and-forget from the
// generation pipeline; errors are reported for logging only.
func (r *Resolver) Warm(ctx context.Context, city string) error {
	if _, err := r.Resolve(ctx, city); err != nil {
		log.Printf("[citymeta] warmup %q: %v", city, err)
		return err
	}
	return nil
}
