package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is an organization-published activity travelers can pin into a
// generated itinerary. RelatedActivities tags the event with activity names
// so the newsletter can match it against traveler interests.
type Event struct {
	ID                primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title             string             `json:"title" bson:"title"`
	Description       string             `json:"description" bson:"description"`
	City              string             `json:"city" bson:"city"`
	Address           string             `json:"address" bson:"address"`
	Period            string             `json:"period" bson:"period"`
	Cost              string             `json:"cost" bson:"cost"`
	Accessible        bool               `json:"accessible" bson:"accessible"`
	Coordinates       Coordinates        `json:"coordinates" bson:"coordinates"`
	AvgDuration       int                `json:"avg_duration" bson:"avg_duration"`
	RelatedActivities []string           `json:"related_activities" bson:"related_activities"`
	OrganizationID    string             `json:"organization_id" bson:"organization_id"`
	StartDate         time.Time          `json:"start_date" bson:"start_date"`
	EndDate           time.Time          `json:"end_date" bson:"end_date"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	DeletedAt         *time.Time         `json:"-" bson:"deleted_at,omitempty"`
}
