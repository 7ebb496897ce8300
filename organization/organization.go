package organization

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

type Store struct{}

func NewStore() *Store { return &Store{} }

func (s *Store) GetByUserID(ctx context.Context, userID string) (*models.Organization, error) {
	var org models.Organization
	err := db.OrganizationsCollection.FindOne(ctx, bson.M{
		"user_id":    userID,
		"deleted_at": bson.M{"$exists": false},
	}).Decode(&org)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("organization", userID)
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

type updateRequest struct {
	Name      string `json:"name"`
	VatNumber string `json:"vat_number"`
	Website   string `json:"website"`
}

// GET /api/organizations/me
func GetMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	org, err := NewStore().GetByUserID(ctx, utils.GetUserIDFromRequest(r))
	if err != nil {
		if apperr.IsNotFound(err) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch organization")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, org)
}

// PUT /api/organizations/me
func UpdateMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body updateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	result, err := db.OrganizationsCollection.UpdateOne(ctx,
		bson.M{"user_id": userID, "deleted_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{
			"name":       body.Name,
			"vat_number": body.VatNumber,
			"website":    body.Website,
		}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update organization")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "No organization for this account")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"id": userID})
}

// DELETE /api/organizations/me
func DeleteMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	result, err := db.OrganizationsCollection.UpdateOne(ctx,
		bson.M{"user_id": userID, "deleted_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"deleted_at": time.Now().UTC()}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete organization")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "No organization for this account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
