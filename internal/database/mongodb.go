package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/JoeLeDev/RSs/internal/config"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(cfg *config.Config) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.MongoTimeout)*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	database := client.Database(cfg.DatabaseName)

	logrus.WithField("database", cfg.DatabaseName).Info("Connected to MongoDB")

	return &MongoDB{
		Client:   client,
		Database: database,
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect from MongoDB: %w", err)
	}

	logrus.Info("Disconnected from MongoDB")
	return nil
}

// CreateIndexes creates the indexes every collection relies on.
// bson.D keeps compound key order stable.
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	userCollection := m.Database.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "auth_uid", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "username", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "friends", Value: 1}},
		},
	}

	if _, err := userCollection.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	groupCollection := m.Database.Collection("groups")
	groupIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
		{
			// Lookup of a user's groups.
			Keys: bson.D{{Key: "members", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "roles.userId", Value: 1}},
		},
	}

	if _, err := groupCollection.Indexes().CreateMany(ctx, groupIndexes); err != nil {
		return fmt.Errorf("create group indexes: %w", err)
	}

	postCollection := m.Database.Collection("posts")
	postIndexes := []mongo.IndexModel{
		{
			// Group feed, newest first. Also serves the dashboard feed
			// through group: null.
			Keys: bson.D{
				{Key: "group", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "author", Value: 1}},
		},
	}

	if _, err := postCollection.Indexes().CreateMany(ctx, postIndexes); err != nil {
		return fmt.Errorf("create post indexes: %w", err)
	}

	messageCollection := m.Database.Collection("messages")
	messageIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "sender", Value: 1},
				{Key: "recipient", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "recipient", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
	}

	if _, err := messageCollection.Indexes().CreateMany(ctx, messageIndexes); err != nil {
		return fmt.Errorf("create message indexes: %w", err)
	}

	notificationCollection := m.Database.Collection("notifications")
	notificationIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			// Serves the unread-first listing and the unread counter.
			Keys: bson.D{
				{Key: "user", Value: 1},
				{Key: "isRead", Value: 1},
			},
		},
	}

	if _, err := notificationCollection.Indexes().CreateMany(ctx, notificationIndexes); err != nil {
		return fmt.Errorf("create notification indexes: %w", err)
	}

	logrus.Info("Database indexes created")
	return nil
}
