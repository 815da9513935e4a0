package database

import (
	"context"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client
var DB *mongo.Database

func Connect(mongoURI string) error {
	// Use longer timeout for Atlas connections
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return err
	}

	// Ping the database with a separate context
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return err
	}

	Client = client

	// Extract database name from URI or use default
	dbName := "tracker"
	if mongoURI != "" {
		parts := strings.Split(mongoURI, "/")
		if len(parts) > 3 {
			dbPart := strings.Split(parts[len(parts)-1], "?")[0]
			if dbPart != "" {
				dbName = dbPart
			}
		}
	}

	DB = client.Database(dbName)

	log.Println("✅ Connected to MongoDB")
	return nil
}

func Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return Client.Disconnect(ctx)
}

// EnsureIndexes creates the unique indexes that back per-resource uniqueness:
// one diary entry per (user, day), one final report and one certificate per
// user, and unique account emails.
func EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	indexes := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{"users", mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		{"diaries", mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "day", Value: 1}}, Options: unique}},
		{"finalreports", mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique}},
		{"certificates", mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique}},
		{"projects", mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}}},
	}

	for _, idx := range indexes {
		if _, err := DB.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model); err != nil {
			return err
		}
	}
	return nil
}
