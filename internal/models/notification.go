package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	User      primitive.ObjectID `bson:"user" json:"user"` // recipient
	Type      string             `bson:"type" json:"type"`
	Content   string             `bson:"content" json:"content"`
	Link      string             `bson:"link" json:"link"`
	IsRead    bool               `bson:"isRead" json:"isRead"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Notification types. These values are part of the stored documents and the
// client contract; do not rename them.
const (
	NotificationTypeMessage       = "message"
	NotificationTypeReaction      = "reaction"
	NotificationTypeFriendRequest = "friend_request"
	NotificationTypeFriendAccept  = "friend_accept"
	NotificationTypeGroupInvite   = "group_invite"
)

// ValidNotificationType reports whether t is one of the known type values.
func ValidNotificationType(t string) bool {
	switch t {
	case NotificationTypeMessage, NotificationTypeReaction,
		NotificationTypeFriendRequest, NotificationTypeFriendAccept,
		NotificationTypeGroupInvite:
		return true
	}
	return false
}
