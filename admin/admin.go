package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"wayfare/db"
	"wayfare/models"
	"wayfare/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Flags exposes the runtime feature switches to the rest of the app.
type Flags interface {
	CanGenerateItinerary(ctx context.Context) bool
}

// ConfigStore reads and writes the single admin_configs document.
type ConfigStore struct{}

func NewConfigStore() *ConfigStore {
	return &ConfigStore{}
}

// CanGenerateItinerary defaults to enabled when no config row exists yet.
func (s *ConfigStore) CanGenerateItinerary(ctx context.Context) bool {
	var cfg models.AdminConfig
	err := db.AdminConfigsCollection.FindOne(ctx, bson.M{}).Decode(&cfg)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			log.Printf("[admin] read config: %v", err)
		}
		return true
	}
	return cfg.ItineraryGenerationEnabled
}

func (s *ConfigStore) Get(ctx context.Context) (models.AdminConfig, error) {
	var cfg models.AdminConfig
	err := db.AdminConfigsCollection.FindOne(ctx, bson.M{}).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.AdminConfig{ItineraryGenerationEnabled: true}, nil
	}
	return cfg, err
}

func (s *ConfigStore) SetItineraryGeneration(ctx context.Context, enabled bool) error {
	_, err := db.AdminConfigsCollection.UpdateOne(
		ctx,
		bson.M{},
		bson.M{"$set": bson.M{
			"itinerary_generation_enabled": enabled,
			"updated_at":                   time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// GET /api/admin/config
func GetConfig(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cfg, err := NewConfigStore().Get(ctx)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch config")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cfg)
}

// PUT /api/admin/config/itinerary-generation
func SetItineraryGeneration(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := NewConfigStore().SetItineraryGeneration(ctx, body.Enabled); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update config")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"enabled": body.Enabled})
}
