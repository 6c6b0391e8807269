package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JoeLeDev/RSs/internal/apperr"
	"github.com/JoeLeDev/RSs/internal/models"
	"github.com/JoeLeDev/RSs/internal/realtime"
)

// NotificationService persists notifications and pushes them to connected
// clients. The stored document is the source of truth; the realtime push is
// best effort and a failed or missed push is never an error.
type NotificationService struct {
	notifications *mongo.Collection
	registry      *realtime.Registry
}

func NewNotificationService(notifications *mongo.Collection, registry *realtime.Registry) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		registry:      registry,
	}
}

// Notify stores a notification for the user and pushes it to their open
// connections. Callers log the returned error and carry on: a notification
// failure must never roll back the action that caused it.
func (ns *NotificationService) Notify(ctx context.Context, userID primitive.ObjectID, notificationType, content, link string) error {
	notification := models.Notification{
		User:      userID,
		Type:      notificationType,
		Content:   content,
		Link:      link,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	result, err := ns.notifications.InsertOne(ctx, notification)
	if err != nil {
		return fmt.Errorf("save notification: %w", err)
	}
	notification.ID = result.InsertedID.(primitive.ObjectID)

	ns.registry.Push(userID, realtime.Event{
		Type: "notification",
		Data: notification,
	})

	return nil
}

// notify is the fire-and-forget variant used by the other services.
func (ns *NotificationService) notify(ctx context.Context, userID primitive.ObjectID, notificationType, content, link string) {
	if err := ns.Notify(ctx, userID, notificationType, content, link); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": userID.Hex(),
			"type":    notificationType,
		}).Warn("Failed to deliver notification")
	}
}

func (ns *NotificationService) NotifyFriendRequest(ctx context.Context, recipient primitive.ObjectID, senderName string) {
	content := fmt.Sprintf("%s vous a envoyé une demande d'ami", senderName)
	ns.notify(ctx, recipient, models.NotificationTypeFriendRequest, content, "/friends")
}

func (ns *NotificationService) NotifyFriendAccept(ctx context.Context, recipient primitive.ObjectID, accepterName string) {
	content := fmt.Sprintf("%s a accepté votre demande d'ami", accepterName)
	ns.notify(ctx, recipient, models.NotificationTypeFriendAccept, content, "/friends")
}

func (ns *NotificationService) NotifyGroupJoin(ctx context.Context, pilot primitive.ObjectID, memberName string, groupID primitive.ObjectID) {
	content := fmt.Sprintf("%s a rejoint votre groupe", memberName)
	ns.notify(ctx, pilot, models.NotificationTypeGroupInvite, content, "/groups/"+groupID.Hex())
}

func (ns *NotificationService) NotifyComment(ctx context.Context, postAuthor primitive.ObjectID, commenterName string, postID primitive.ObjectID) {
	content := fmt.Sprintf("%s a commenté votre publication", commenterName)
	ns.notify(ctx, postAuthor, models.NotificationTypeReaction, content, "/posts/"+postID.Hex())
}

func (ns *NotificationService) NotifyLike(ctx context.Context, postAuthor primitive.ObjectID, likerName string, postID primitive.ObjectID) {
	content := fmt.Sprintf("%s a aimé votre publication", likerName)
	ns.notify(ctx, postAuthor, models.NotificationTypeReaction, content, "/posts/"+postID.Hex())
}

func (ns *NotificationService) NotifyMessage(ctx context.Context, recipient primitive.ObjectID, senderName string, senderID primitive.ObjectID) {
	content := fmt.Sprintf("Nouveau message de %s", senderName)
	ns.notify(ctx, recipient, models.NotificationTypeMessage, content, "/messages/"+senderID.Hex())
}

// List returns the user's notifications, unread first, then newest first.
func (ns *NotificationService) List(ctx context.Context, userID primitive.ObjectID, page, limit int64) ([]models.Notification, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "isRead", Value: 1}, {Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := ns.notifications.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return notifications, nil
}

func (ns *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := ns.notifications.CountDocuments(ctx, bson.M{
		"user":   userID,
		"isRead": false,
	})
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification as read. Only the recipient can do it;
// anyone else sees the notification as missing.
func (ns *NotificationService) MarkRead(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	result, err := ns.notifications.UpdateOne(ctx,
		bson.M{"_id": notificationID, "user": userID},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}

func (ns *NotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := ns.notifications.UpdateMany(ctx,
		bson.M{"user": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return result.ModifiedCount, nil
}

// Delete removes one of the recipient's notifications.
func (ns *NotificationService) Delete(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	result, err := ns.notifications.DeleteOne(ctx, bson.M{"_id": notificationID, "user": userID})
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}
