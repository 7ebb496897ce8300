package traveler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"wayfare/apperr"
	"wayfare/db"
	"wayfare/models"
	"wayfare/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store reads and writes traveler profiles keyed by their user account.
type Store struct{}

func NewStore() *Store { return &Store{} }

func (s *Store) GetByUserID(ctx context.Context, userID string) (*models.Traveler, error) {
	var t models.Traveler
	err := db.TravelersCollection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("traveler", userID)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListAll returns every traveler profile. The newsletter run iterates the
// whole collection, so there is no pagination here.
func (s *Store) ListAll(ctx context.Context) ([]models.Traveler, error) {
	cursor, err := db.TravelersCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	travelers := []models.Traveler{}
	if err := cursor.All(ctx, &travelers); err != nil {
		return nil, err
	}
	return travelers, nil
}

type updateProfileRequest struct {
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	BirthDate     *time.Time `json:"birth_date"`
	Accessibility bool       `json:"accessibility"`
	InterestedIn  []string   `json:"interested_in"`
}

// GET /api/travelers/me
func GetMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	t, err := NewStore().GetByUserID(ctx, utils.GetUserIDFromRequest(r))
	if err != nil {
		if apperr.IsNotFound(err) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch profile")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, t)
}

// PUT /api/travelers/me
func UpdateMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	for _, act := range body.InterestedIn {
		if _, ok := models.Activities[act]; !ok {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid activity name: "+act)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	result, err := db.TravelersCollection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{
			"first_name":    body.FirstName,
			"last_name":     body.LastName,
			"birth_date":    body.BirthDate,
			"accessibility": body.Accessibility,
			"interested_in": body.InterestedIn,
		}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "No traveler profile for this account")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"id": userID})
}
