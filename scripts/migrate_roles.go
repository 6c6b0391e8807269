// Backfills the role field on user documents created before roles existed.
// Run once against the target database:
//
//	go run scripts/migrate_roles.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("DATABASE_NAME")
	if dbName == "" {
		dbName = "my_icc_online"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(ctx)

	collection := client.Database(dbName).Collection("users")

	result, err := collection.UpdateMany(
		ctx,
		bson.M{
			"$or": []bson.M{
				{"role": bson.M{"$exists": false}},
				{"role": ""},
			},
		},
		bson.M{
			"$set": bson.M{"role": "user"},
		},
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Migrated %d users\n", result.ModifiedCount)
}
