package itinerary

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
	"wayfare/rdx"
	"wayfare/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Handlers binds the itinerary services to the HTTP surface.
type Handlers struct {
	pipeline  *RequestPipeline
	lifecycle *Lifecycle
	requests  RequestStore
}

func NewHandlers(pipeline *RequestPipeline, lifecycle *Lifecycle, requests RequestStore) *Handlers {
	return &Handlers{pipeline: pipeline, lifecycle: lifecycle, requests: requests}
}

func handlerCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 10*time.Second)
}

// respondErr maps the service error taxonomy onto HTTP statuses.
func respondErr(w http.ResponseWriter, err error) {
	switch {
	case apperr.IsNotFound(err):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrGenerationDisabled):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, apperr.ErrDateNotValid):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrCannotUpdateItinerary),
		errors.Is(err, apperr.ErrRequestNotCompleted):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

// POST /api/itineraries/requests
func (h *Handlers) SubmitRequest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)

	var req models.ItineraryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := handlerCtx(r)
	defer cancel()

	id, err := h.pipeline.Submit(ctx, userID, &req, r.URL.Query().Get("event_id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusAccepted, utils.M{"id": id})
}

// GET /api/itineraries/requests/:id
func (h *Handlers) GetRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := handlerCtx(r)
	defer cancel()

	req, err := h.requests.GetByID(ctx, ps.ByName("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	if req.UserID != utils.GetUserIDFromRequest(r) {
		utils.RespondWithError(w, http.StatusForbidden, "Not your request")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, req)
}

// POST /api/itineraries/requests/:id/promote
func (h *Handlers) PromoteRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := handlerCtx(r)
	defer cancel()

	id := ps.ByName("id")
	req, err := h.requests.GetByID(ctx, id)
	if err != nil {
		respondErr(w, err)
		return
	}
	if req.UserID != utils.GetUserIDFromRequest(r) {
		utils.RespondWithError(w, http.StatusForbidden, "Not your request")
		return
	}

	itineraryID, err := h.pipeline.Promote(ctx, id)
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"id": itineraryID})
}

// canRead reports whether userID may see the itinerary.
func canRead(it *models.Itinerary, userID string) bool {
	return it.IsPublic || it.UserID == userID || utils.Contains(it.SharedWith, userID)
}

// GET /api/itineraries/:id
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := handlerCtx(r)
	defer cancel()

	it, meta, err := h.lifecycle.Detail(ctx, ps.ByName("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	if !canRead(it, utils.GetUserIDFromRequest(r)) {
		utils.RespondWithError(w, http.StatusForbidden, "Not allowed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"itinerary": it, "meta": meta})
}

// ownedItinerary loads the itinerary and enforces ownership.
func (h *Handlers) ownedItinerary(ctx context.Context, w http.ResponseWriter, r *http.Request, id string) *models.Itinerary {
	it, err := h.lifecycle.Get(ctx, id)
	if err != nil {
		respondErr(w, err)
		return nil
	}
	if it.UserID != utils.GetUserIDFromRequest(r) {
		utils.RespondWithError(w, http.StatusForbidden, "Not your itinerary")
		return nil
	}
	return it
}

// PUT /api/itineraries/:id
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var upd models.UpdateItineraryRequest
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := upd.Validate(); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := handlerCtx(r)
	defer cancel()

	id := ps.ByName("id")
	if h.ownedItinerary(ctx, w, r, id) == nil {
		return
	}
	if err := h.lifecycle.Update(ctx, id, &upd); err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"id": id})
}

// DELETE /api/itineraries/:id
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := handlerCtx(r)
	defer cancel()

	id := ps.ByName("id")
	if h.ownedItinerary(ctx, w, r, id) == nil {
		return
	}
	if err := h.lifecycle.Delete(ctx, id); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/itineraries/share
func (h *Handlers) Share(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body models.ShareWithRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := handlerCtx(r)
	defer cancel()

	if h.ownedItinerary(ctx, w, r, body.ID) == nil {
		return
	}
	if err := h.lifecycle.ShareWith(ctx, body.ID, body.Users); err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"id": body.ID})
}

// POST /api/itineraries/publish
func (h *Handlers) Publish(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body models.PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := handlerCtx(r)
	defer cancel()

	if h.ownedItinerary(ctx, w, r, body.ID) == nil {
		return
	}
	if err := h.lifecycle.Publish(ctx, body.ID, body.IsPublic); err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"id": body.ID, "is_public": body.IsPublic})
}

// POST /api/itineraries/duplicate
func (h *Handlers) Duplicate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body models.DuplicateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := handlerCtx(r)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	it, err := h.lifecycle.Get(ctx, body.ID)
	if err != nil {
		respondErr(w, err)
		return
	}
	// Anyone who can read an itinerary can fork their own copy of it.
	if !canRead(it, userID) {
		utils.RespondWithError(w, http.StatusForbidden, "Not allowed")
		return
	}

	newID, err := h.lifecycle.Duplicate(ctx, userID, body.ID)
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"id": newID})
}

// POST /api/itineraries/:id/complete
func (h *Handlers) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := handlerCtx(r)
	defer cancel()

	id := ps.ByName("id")
	if h.ownedItinerary(ctx, w, r, id) == nil {
		return
	}
	if err := h.lifecycle.Complete(ctx, id); err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"id": id, "status": models.ItineraryCompleted})
}

// POST /api/itineraries/:id/save and DELETE /api/itineraries/:id/save
func (h *Handlers) Save(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.toggleSave(w, r, ps, true)
}

func (h *Handlers) Unsave(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.toggleSave(w, r, ps, false)
}

func (h *Handlers) toggleSave(w http.ResponseWriter, r *http.Request, ps httprouter.Params, saved bool) {
	ctx, cancel := handlerCtx(r)
	defer cancel()

	id := ps.ByName("id")
	userID := utils.GetUserIDFromRequest(r)

	it, err := h.lifecycle.Get(ctx, id)
	if err != nil {
		respondErr(w, err)
		return
	}
	if !canRead(it, userID) {
		utils.RespondWithError(w, http.StatusForbidden, "Not allowed")
		return
	}
	if err := h.lifecycle.Save(ctx, id, userID, saved); err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"id": id, "saved": saved})
}

// GET /api/itineraries/:id/pdf
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := handlerCtx(r)
	defer cancel()

	it, err := h.lifecycle.Get(ctx, ps.ByName("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	if !canRead(it, utils.GetUserIDFromRequest(r)) {
		utils.RespondWithError(w, http.StatusForbidden, "Not allowed")
		return
	}

	pdfBytes, err := RenderPDF(it)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=itinerary-"+it.ID.Hex()+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}

// ---- listings ----

func paginationFromQuery(r *http.Request) models.Paginated {
	var p models.Paginated
	p.PageNumber, _ = strconv.Atoi(r.URL.Query().Get("page_number"))
	p.PageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	p.Normalize()
	return p
}

func listItineraries(ctx context.Context, filter bson.M, p models.Paginated) (models.PaginatedResponse, error) {
	total, err := db.ItinerariesCollection.CountDocuments(ctx, filter)
	if err != nil {
		return models.PaginatedResponse{}, err
	}

	opts := options.Find().
		SetSort(bson.M{"start_date": 1}).
		SetSkip(int64(p.Skip())).
		SetLimit(int64(p.PageSize))
	cursor, err := db.ItinerariesCollection.Find(ctx, filter, opts)
	if err != nil {
		return models.PaginatedResponse{}, err
	}
	defer cursor.Close(ctx)

	itineraries := []models.Itinerary{}
	if err := cursor.All(ctx, &itineraries); err != nil {
		return models.PaginatedResponse{}, err
	}
	return models.NewPaginatedResponse(itineraries, int(total), p), nil
}

// GET /api/itineraries
func (h *Handlers) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := handlerCtx(r)
	defer cancel()

	filter := notDeleted(bson.M{"user_id": utils.GetUserIDFromRequest(r)})
	resp, err := listItineraries(ctx, filter, paginationFromQuery(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/itineraries/completed
func (h *Handlers) ListCompleted(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := handlerCtx(r)
	defer cancel()

	filter := notDeleted(bson.M{
		"user_id": utils.GetUserIDFromRequest(r),
		"status":  models.ItineraryCompleted,
	})
	resp, err := listItineraries(ctx, filter, paginationFromQuery(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/itineraries/shared
func (h *Handlers) ListSharedWithMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := handlerCtx(r)
	defer cancel()

	filter := notDeleted(bson.M{"shared_with": utils.GetUserIDFromRequest(r)})
	resp, err := listItineraries(ctx, filter, paginationFromQuery(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/itineraries/saved
func (h *Handlers) ListSaved(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := handlerCtx(r)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	p := paginationFromQuery(r)

	cursor, err := db.ItineraryMetasCollection.Find(ctx, bson.M{"saved_by": userID})
	if err != nil {
		respondErr(w, err)
		return
	}
	defer cursor.Close(ctx)

	var metas []models.ItineraryMeta
	if err := cursor.All(ctx, &metas); err != nil {
		respondErr(w, err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(metas))
	for _, meta := range metas {
		ids = append(ids, meta.ItineraryID)
	}

	filter := notDeleted(bson.M{"_id": bson.M{"$in": ids}})
	resp, err := listItineraries(ctx, filter, p)
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/itineraries/search
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var search models.ItinerarySearch
	if err := json.NewDecoder(r.Body).Decode(&search); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := search.Validate(); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	search.Normalize()

	filter := notDeleted(bson.M{"is_public": true})
	if search.City != "" {
		filter["city"] = bson.M{"$regex": search.City, "$options": "i"}
	}
	if search.Budget != "NONE" {
		filter["budget"] = search.Budget
	}
	if search.TravellingWith != "NONE" {
		filter["travelling_with"] = search.TravellingWith
	}
	if len(search.InterestedIn) > 0 {
		filter["interested_in"] = bson.M{"$all": search.InterestedIn}
	}

	ctx, cancel := handlerCtx(r)
	defer cancel()

	resp, err := listItineraries(ctx, filter, search.Paginated)
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/itineraries/spotlight
//
// The ranking is rebuilt at most once a day; saves invalidate the cache.
func (h *Handlers) MostSaved(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := handlerCtx(r)
	defer cancel()

	if cached := rdx.Get(ctx, mostSavedCacheKey); cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(cached))
		return
	}

	pipeline := []bson.M{
		{"$addFields": bson.M{"saved_count": bson.M{"$size": "$saved_by"}}},
		{"$match": bson.M{"saved_count": bson.M{"$gt": 0}}},
		{"$sort": bson.M{"saved_count": -1}},
		{"$limit": 5},
		{"$lookup": bson.M{
			"from":         models.CollItineraries,
			"localField":   "itinerary_id",
			"foreignField": "_id",
			"as":           "itinerary",
		}},
		{"$unwind": "$itinerary"},
		{"$match": bson.M{
			"itinerary.is_public":  true,
			"itinerary.deleted_at": bson.M{"$exists": false},
		}},
		{"$replaceRoot": bson.M{"newRoot": "$itinerary"}},
	}

	cursor, err := db.ItineraryMetasCollection.Aggregate(ctx, pipeline)
	if err != nil {
		respondErr(w, err)
		return
	}
	defer cursor.Close(ctx)

	itineraries := []models.Itinerary{}
	if err := cursor.All(ctx, &itineraries); err != nil {
		respondErr(w, err)
		return
	}

	encoded, err := json.Marshal(itineraries)
	if err != nil {
		respondErr(w, err)
		return
	}
	rdx.Set(ctx, mostSavedCacheKey, string(encoded), rdx.DailyExpire)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(encoded)
}
