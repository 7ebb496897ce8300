package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItineraryRequest statuses.
const (
	RequestPending   = "PENDING"
	RequestCompleted = "COMPLETED"
	RequestError     = "ERROR"
)

// Itinerary statuses, forward-only: PENDING -> READY -> COMPLETED.
const (
	ItineraryPending   = "PENDING"
	ItineraryReady     = "READY"
	ItineraryCompleted = "COMPLETED"
)

// Budget is a named per-person spending range in EUR.
type Budget struct {
	Name string
	Min  int
	Max  int
}

var Budgets = map[string]Budget{
	"NONE":   {Name: "NONE", Min: -1, Max: -1},
	"LOW":    {Name: "LOW", Min: 0, Max: 500},
	"MEDIUM": {Name: "MEDIUM", Min: 500, Max: 1000},
	"HIGH":   {Name: "HIGH", Min: 1000, Max: 5000},
}

var TravellingWith = map[string]string{
	"NONE":    "none",
	"SOLO":    "solo",
	"COUPLE":  "in couple",
	"FAMILY":  "with family",
	"FRIENDS": "with friends",
}

var Activities = map[string]string{
	"BEACH":              "beaches",
	"CITY_SIGHTSEEING":   "city sightseeing",
	"OUTDOOR_ADVENTURES": "outdoor adventures",
	"FESTIVAL":           "festival",
	"FOOD_EXPLORATION":   "food exploration",
	"NIGHTLIFE":          "nightlife",
	"SHOPPING":           "shopping",
	"SPA_WELLNESS":       "spa wellness",
}

// Stage is one activity slot within a generated day.
type Stage struct {
	Period      string      `json:"period" bson:"period"`
	Title       string      `json:"title" bson:"title"`
	Description string      `json:"description" bson:"description"`
	Cost        string      `json:"cost" bson:"cost"`
	Accessible  bool        `json:"accessible" bson:"accessible"`
	Coordinates Coordinates `json:"coordinates" bson:"coordinates"`
	AvgDuration int         `json:"avg_duration" bson:"avg_duration"`
}

// DayPlan is one day's generated plan.
type DayPlan struct {
	Day    int     `json:"day" bson:"day"`
	Title  string  `json:"title" bson:"title"`
	Stages []Stage `json:"stages" bson:"stages"`
}

type DocsDetail struct {
	Name        string `json:"name" bson:"name"`
	Description string `json:"description" bson:"description"`
	Done        bool   `json:"done" bson:"done"`
}

// Docs is the mandatory/recommended checklist attached to an itinerary.
type Docs struct {
	Mandatory   []DocsDetail `json:"mandatory" bson:"mandatory"`
	Recommended []DocsDetail `json:"recommended" bson:"recommended"`
}

// ItineraryRequest is the staging record for an in-flight generation. The
// background day loop is its only writer once generation has started.
type ItineraryRequest struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	City           string             `json:"city" bson:"city"`
	StartDate      time.Time          `json:"start_date" bson:"start_date"`
	EndDate        time.Time          `json:"end_date" bson:"end_date"`
	Budget         string             `json:"budget" bson:"budget"`
	TravellingWith string             `json:"travelling_with" bson:"travelling_with"`
	Accessibility  bool               `json:"accessibility" bson:"accessibility"`
	InterestedIn   []string           `json:"interested_in" bson:"interested_in"`
	UserID         string             `json:"user_id" bson:"user_id"`
	Status         string             `json:"status" bson:"status"`
	Details        []DayPlan          `json:"details" bson:"details"`
}

// Validate checks enum membership and the date invariant. The start-date
// against-today check belongs to the pipeline, not here.
func (ir *ItineraryRequest) Validate() error {
	if _, ok := Budgets[ir.Budget]; !ok {
		return fmt.Errorf("invalid budget name: %s", ir.Budget)
	}
	if _, ok := TravellingWith[ir.TravellingWith]; !ok {
		return fmt.Errorf("invalid travelling_with name: %s", ir.TravellingWith)
	}
	for _, act := range ir.InterestedIn {
		if _, ok := Activities[act]; !ok {
			return fmt.Errorf("invalid activity name: %s", act)
		}
	}
	if ir.EndDate.Before(ir.StartDate) {
		return fmt.Errorf("end_date must be greater than or equal to start_date")
	}
	return nil
}

// TripDuration is the inclusive day count of the trip window.
func (ir *ItineraryRequest) TripDuration() int {
	return int(ir.EndDate.Sub(ir.StartDate).Hours()/24) + 1
}

// Itinerary is the durable, user-visible trip plan.
type Itinerary struct {
	ID                   primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	City                 string             `json:"city" bson:"city"`
	StartDate            time.Time          `json:"start_date" bson:"start_date"`
	EndDate              time.Time          `json:"end_date" bson:"end_date"`
	Budget               string             `json:"budget" bson:"budget"`
	TravellingWith       string             `json:"travelling_with" bson:"travelling_with"`
	Accessibility        bool               `json:"accessibility" bson:"accessibility"`
	InterestedIn         []string           `json:"interested_in" bson:"interested_in"`
	UserID               string             `json:"user_id" bson:"user_id"`
	Details              []DayPlan          `json:"details" bson:"details"`
	SharedWith           []string           `json:"shared_with" bson:"shared_with"`
	Status               string             `json:"status" bson:"status"`
	Docs                 *Docs              `json:"docs,omitempty" bson:"docs,omitempty"`
	DocsNotification     bool               `json:"docs_notification" bson:"docs_notification"`
	ReminderNotification bool               `json:"reminder_notification" bson:"reminder_notification"`
	IsPublic             bool               `json:"is_public" bson:"is_public"`
	CreatedAt            time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt            *time.Time         `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	DeletedAt            *time.Time         `json:"-" bson:"deleted_at,omitempty"`
	// Guards against a scheduler re-run mailing the same day twice.
	LastNotifiedAt *time.Time `json:"-" bson:"last_notified_at,omitempty"`
}

// ItineraryFromRequest copies a completed request into a fresh PENDING
// itinerary. Sharing, docs and notification flags start zeroed.
func ItineraryFromRequest(req *ItineraryRequest) *Itinerary {
	return &Itinerary{
		City:           req.City,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Budget:         req.Budget,
		TravellingWith: req.TravellingWith,
		Accessibility:  req.Accessibility,
		InterestedIn:   req.InterestedIn,
		UserID:         req.UserID,
		Details:        req.Details,
		SharedWith:     []string{},
		Status:         ItineraryPending,
		CreatedAt:      time.Now().UTC(),
	}
}

// TripDuration is the inclusive day count of the trip window.
func (it *Itinerary) TripDuration() int {
	return int(it.EndDate.Sub(it.StartDate).Hours()/24) + 1
}

// UpdateItineraryRequest carries the trip parameters an owner may edit while
// the itinerary is still PENDING.
type UpdateItineraryRequest struct {
	City           string    `json:"city"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Budget         string    `json:"budget"`
	TravellingWith string    `json:"travelling_with"`
	Accessibility  bool      `json:"accessibility"`
	InterestedIn   []string  `json:"interested_in"`
	Details        []DayPlan `json:"details"`
}

func (ur *UpdateItineraryRequest) Validate() error {
	candidate := ItineraryRequest{
		Budget:         ur.Budget,
		TravellingWith: ur.TravellingWith,
		InterestedIn:   ur.InterestedIn,
		StartDate:      ur.StartDate,
		EndDate:        ur.EndDate,
	}
	return candidate.Validate()
}

// ItineraryMeta tracks engagement with a stored itinerary.
type ItineraryMeta struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ItineraryID  primitive.ObjectID `json:"itinerary_id" bson:"itinerary_id"`
	DuplicatedBy []string           `json:"duplicated_by" bson:"duplicated_by"`
	SavedBy      []string           `json:"saved_by" bson:"saved_by"`
	Views        int                `json:"views" bson:"views"`
}

type ItinerarySearch struct {
	Paginated
	City           string   `json:"city"`
	Budget         string   `json:"budget"`
	InterestedIn   []string `json:"interested_in"`
	TravellingWith string   `json:"travelling_with"`
}

// Validate requires at least one filter and known enum names.
func (s *ItinerarySearch) Validate() error {
	if s.Budget == "" {
		s.Budget = "NONE"
	}
	if s.TravellingWith == "" {
		s.TravellingWith = "NONE"
	}
	if _, ok := Budgets[s.Budget]; !ok {
		return fmt.Errorf("invalid budget name: %s", s.Budget)
	}
	if _, ok := TravellingWith[s.TravellingWith]; !ok {
		return fmt.Errorf("invalid travelling_with name: %s", s.TravellingWith)
	}
	for _, act := range s.InterestedIn {
		if _, ok := Activities[act]; !ok {
			return fmt.Errorf("invalid activity name: %s", act)
		}
	}
	if s.City == "" && s.Budget == "NONE" && s.TravellingWith == "NONE" && len(s.InterestedIn) == 0 {
		return fmt.Errorf("no filter provided, at least one should not be empty")
	}
	return nil
}

type ShareWithRequest struct {
	ID    string   `json:"id"`
	Users []string `json:"users"`
}

type PublishRequest struct {
	ID       string `json:"id"`
	IsPublic bool   `json:"is_public"`
}

type DuplicateRequest struct {
	ID string `json:"id"`
}
