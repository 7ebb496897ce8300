package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CityDescription is the structured answer the assistant returns for a city.
type CityDescription struct {
	Name        string  `json:"name" bson:"name"`
	Country     string  `json:"country" bson:"country"`
	Description string  `json:"description" bson:"description"`
	Lat         float64 `json:"lat" bson:"lat"`
	Lng         float64 `json:"lng" bson:"lng"`
}

// CityMeta is the cached descriptive record for a city. Written once on the
// first resolution, read-only afterwards.
type CityMeta struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Country     string             `json:"country" bson:"country"`
	Coordinates Coordinates        `json:"coordinates" bson:"coordinates"`
	Description string             `json:"description" bson:"description"`
	Image       UnsplashImage      `json:"image" bson:"image"`
}

// EncodeCityName normalizes a city name into the cache lookup key.
func EncodeCityName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// CityMetaFromSources assembles the record out of the two collaborators.
func CityMetaFromSources(image UnsplashImage, desc CityDescription) *CityMeta {
	return &CityMeta{
		Name:        EncodeCityName(desc.Name),
		Country:     desc.Country,
		Coordinates: Coordinates{Lat: desc.Lat, Lng: desc.Lng},
		Description: desc.Description,
		Image:       image,
	}
}
