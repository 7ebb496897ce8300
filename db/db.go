package db

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	AdminConfigsCollection      *mongo.Collection
	CityMetasCollection         *mongo.Collection
	EventsCollection            *mongo.Collection
	ItinerariesCollection       *mongo.Collection
	ItineraryMetasCollection    *mongo.Collection
	ItineraryRequestsCollection *mongo.Collection
	OrganizationsCollection     *mongo.Collection
	TravelersCollection         *mongo.Collection
	UserCollection              *mongo.Collection
	Client                      *mongo.Client
)

// Connect initializes the MongoDB connection and the collection handles.
// Called once from main before the server starts serving.
func Connect() error {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGODB_DATABASE")
	if dbName == "" {
		dbName = "wayfare"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}
	Client = client

	database := client.Database(dbName)
	AdminConfigsCollection = database.Collection("admin_configs")
	CityMetasCollection = database.Collection("city_metas")
	EventsCollection = database.Collection("events")
	ItinerariesCollection = database.Collection("itineraries")
	ItineraryMetasCollection = database.Collection("itinerary_metas")
	ItineraryRequestsCollection = database.Collection("itinerary_requests")
	OrganizationsCollection = database.Collection("organizations")
	TravelersCollection = database.Collection("travelers")
	UserCollection = database.Collection("users")

	ensureIndexes(ctx)
	return nil
}

// ensureIndexes creates the indexes the core relies on. The unique key on
// city_metas.name keeps concurrent cache misses from inserting duplicates.
func ensureIndexes(ctx context.Context) {
	_, err := CityMetasCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("[db] city_metas index: %v", err)
	}

	_, err = UserCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("[db] users index: %v", err)
	}

	_, err = ItinerariesCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "start_date", Value: 1}, {Key: "end_date", Value: 1}},
	})
	if err != nil {
		log.Printf("[db] itineraries index: %v", err)
	}
}

// Disconnect closes the client; used during graceful shutdown.
func Disconnect(ctx context.Context) {
	if Client == nil {
		return
	}
	if err := Client.Disconnect(ctx); err != nil {
		log.Printf("[db] disconnect: %v", err)
	}
}
