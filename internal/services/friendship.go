package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/JoeLeDev/RSs/internal/apperr"
	"github.com/JoeLeDev/RSs/internal/models"
)

// FriendshipService drives the symmetric friend request flow. Every
// transition updates both user documents; $addToSet and $pull keep the
// arrays duplicate free even if a request is retried.
type FriendshipService struct {
	users         *mongo.Collection
	notifications *NotificationService
}

func NewFriendshipService(users *mongo.Collection, notifications *NotificationService) *FriendshipService {
	return &FriendshipService{
		users:         users,
		notifications: notifications,
	}
}

func (s *FriendshipService) loadTarget(ctx context.Context, caller *models.User, targetID primitive.ObjectID) (*models.User, error) {
	if targetID == caller.ID {
		return nil, apperr.Validation("cannot befriend yourself")
	}

	var target models.User
	err := s.users.FindOne(ctx, bson.M{"_id": targetID}).Decode(&target)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &target, nil
}

// Request sends a friend request from caller to target.
func (s *FriendshipService) Request(ctx context.Context, caller *models.User, targetID primitive.ObjectID) error {
	target, err := s.loadTarget(ctx, caller, targetID)
	if err != nil {
		return err
	}

	switch caller.RelationTo(target.ID) {
	case models.RelationFriends:
		return apperr.Validation("already friends")
	case models.RelationRequestSent:
		return apperr.Validation("friend request already sent")
	case models.RelationRequestReceived:
		return apperr.Validation("this user already sent you a request")
	}

	if _, err := s.users.UpdateOne(ctx,
		bson.M{"_id": caller.ID},
		bson.M{"$addToSet": bson.M{"friendRequestsSent": target.ID}},
	); err != nil {
		return fmt.Errorf("record sent request: %w", err)
	}
	if _, err := s.users.UpdateOne(ctx,
		bson.M{"_id": target.ID},
		bson.M{"$addToSet": bson.M{"friendRequestsReceived": caller.ID}},
	); err != nil {
		return fmt.Errorf("record received request: %w", err)
	}

	models.SendRequest(caller, target)
	s.notifications.NotifyFriendRequest(ctx, target.ID, caller.Username)
	return nil
}

// Accept turns a pending request from target into a friendship.
func (s *FriendshipService) Accept(ctx context.Context, caller *models.User, targetID primitive.ObjectID) error {
	target, err := s.loadTarget(ctx, caller, targetID)
	if err != nil {
		return err
	}

	if !caller.HasReceivedRequestFrom(target.ID) {
		return apperr.Validation("no pending request from this user")
	}

	if _, err := s.users.UpdateOne(ctx,
		bson.M{"_id": caller.ID},
		bson.M{
			"$pull":     bson.M{"friendRequestsReceived": target.ID},
			"$addToSet": bson.M{"friends": target.ID},
		},
	); err != nil {
		return fmt.Errorf("accept request: %w", err)
	}
	if _, err := s.users.UpdateOne(ctx,
		bson.M{"_id": target.ID},
		bson.M{
			"$pull":     bson.M{"friendRequestsSent": caller.ID},
			"$addToSet": bson.M{"friends": caller.ID},
		},
	); err != nil {
		return fmt.Errorf("accept request on sender: %w", err)
	}

	models.AcceptRequest(caller, target)
	s.notifications.NotifyFriendAccept(ctx, target.ID, caller.Username)
	return nil
}

// Reject declines a pending request received from target. No notification
// is sent: the sender is not told they were turned down.
func (s *FriendshipService) Reject(ctx context.Context, caller *models.User, targetID primitive.ObjectID) error {
	target, err := s.loadTarget(ctx, caller, targetID)
	if err != nil {
		return err
	}

	if !caller.HasReceivedRequestFrom(target.ID) {
		return apperr.Validation("no pending request from this user")
	}

	return s.clearRequest(ctx, target, caller)
}

// Cancel withdraws a pending request the caller sent to target.
func (s *FriendshipService) Cancel(ctx context.Context, caller *models.User, targetID primitive.ObjectID) error {
	target, err := s.loadTarget(ctx, caller, targetID)
	if err != nil {
		return err
	}

	if !caller.HasSentRequestTo(target.ID) {
		return apperr.Validation("no pending request to this user")
	}

	return s.clearRequest(ctx, caller, target)
}

// clearRequest drops the sender→receiver pending edge from both documents.
func (s *FriendshipService) clearRequest(ctx context.Context, sender, receiver *models.User) error {
	if _, err := s.users.UpdateOne(ctx,
		bson.M{"_id": sender.ID},
		bson.M{"$pull": bson.M{"friendRequestsSent": receiver.ID}},
	); err != nil {
		return fmt.Errorf("clear sent request: %w", err)
	}
	if _, err := s.users.UpdateOne(ctx,
		bson.M{"_id": receiver.ID},
		bson.M{"$pull": bson.M{"friendRequestsReceived": sender.ID}},
	); err != nil {
		return fmt.Errorf("clear received request: %w", err)
	}

	models.ClearRequest(sender, receiver)
	return nil
}

// Remove deletes an existing friendship from both sides.
func (s *FriendshipService) Remove(ctx context.Context, caller *models.User, targetID primitive.ObjectID) error {
	target, err := s.loadTarget(ctx, caller, targetID)
	if err != nil {
		return err
	}

	if !caller.IsFriend(target.ID) {
		return apperr.Validation("not friends with this user")
	}

	if _, err := s.users.UpdateOne(ctx,
		bson.M{"_id": caller.ID},
		bson.M{"$pull": bson.M{"friends": target.ID}},
	); err != nil {
		return fmt.Errorf("remove friend: %w", err)
	}
	if _, err := s.users.UpdateOne(ctx,
		bson.M{"_id": target.ID},
		bson.M{"$pull": bson.M{"friends": caller.ID}},
	); err != nil {
		return fmt.Errorf("remove friend on peer: %w", err)
	}

	models.RemoveFriendship(caller, target)
	return nil
}
