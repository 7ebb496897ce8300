package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles carried in the JWT claims.
const (
	RoleTraveler     = "TRAVELER"
	RoleOrganization = "ORGANIZATION"
	RoleAdmin        = "ADMIN"
)

type User struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	Roles     []string           `json:"roles" bson:"roles"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	LastLogin *time.Time         `json:"last_login,omitempty" bson:"last_login,omitempty"`
}

type Traveler struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        string             `json:"user_id" bson:"user_id"`
	FirstName     string             `json:"first_name" bson:"first_name"`
	LastName      string             `json:"last_name" bson:"last_name"`
	BirthDate     *time.Time         `json:"birth_date,omitempty" bson:"birth_date,omitempty"`
	Accessibility bool               `json:"accessibility" bson:"accessibility"`
	InterestedIn  []string           `json:"interested_in" bson:"interested_in"`
}

func (t *Traveler) FullName() string {
	return t.FirstName + " " + t.LastName
}

type Organization struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string             `json:"user_id" bson:"user_id"`
	Name      string             `json:"name" bson:"name"`
	VatNumber string             `json:"vat_number" bson:"vat_number"`
	Website   string             `json:"website" bson:"website"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	DeletedAt *time.Time         `json:"-" bson:"deleted_at,omitempty"`
}

// AdminConfig holds the runtime feature switches admins can flip.
type AdminConfig struct {
	ID                         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ItineraryGenerationEnabled bool               `json:"itinerary_generation_enabled" bson:"itinerary_generation_enabled"`
	UpdatedAt                  time.Time          `json:"updated_at" bson:"updated_at"`
}
