package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JoeLeDev/RSs/internal/apperr"
	"github.com/JoeLeDev/RSs/internal/models"
)

// MessageService handles direct messages between two users.
type MessageService struct {
	messages      *mongo.Collection
	users         *mongo.Collection
	notifications *NotificationService
}

func NewMessageService(messages, users *mongo.Collection, notifications *NotificationService) *MessageService {
	return &MessageService{
		messages:      messages,
		users:         users,
		notifications: notifications,
	}
}

// SendMessageInput is the payload for Send.
type SendMessageInput struct {
	RecipientID string `json:"recipientId" binding:"required,objectid"`
	Content     string `json:"content" binding:"required,max=5000"`
}

func (s *MessageService) Send(ctx context.Context, caller *models.User, in SendMessageInput) (*models.Message, error) {
	recipientID, err := primitive.ObjectIDFromHex(in.RecipientID)
	if err != nil {
		return nil, apperr.Validation("invalid recipient id")
	}
	if recipientID == caller.ID {
		return nil, apperr.Validation("cannot message yourself")
	}

	count, err := s.users.CountDocuments(ctx, bson.M{"_id": recipientID})
	if err != nil {
		return nil, fmt.Errorf("check recipient: %w", err)
	}
	if count == 0 {
		return nil, apperr.NotFound("user not found")
	}

	message := models.Message{
		Sender:    caller.ID,
		Recipient: recipientID,
		Content:   in.Content,
		CreatedAt: time.Now(),
	}

	result, err := s.messages.InsertOne(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	message.ID = result.InsertedID.(primitive.ObjectID)

	s.notifications.NotifyMessage(ctx, recipientID, caller.Username, caller.ID)
	return &message, nil
}

// Conversation returns the messages exchanged between the caller and the
// peer, oldest first.
func (s *MessageService) Conversation(ctx context.Context, caller *models.User, peerID primitive.ObjectID, page, limit int64) ([]models.Message, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	filter := bson.M{"$or": []bson.M{
		{"sender": caller.ID, "recipient": peerID},
		{"sender": peerID, "recipient": caller.ID},
	}}

	// Page newest first, then flip so the client renders oldest first.
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := s.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ListMine returns every message the caller sent or received, newest first.
func (s *MessageService) ListMine(ctx context.Context, caller *models.User, page, limit int64) ([]models.Message, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	filter := bson.M{"$or": []bson.M{
		{"sender": caller.ID},
		{"recipient": caller.ID},
	}}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := s.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return messages, nil
}
