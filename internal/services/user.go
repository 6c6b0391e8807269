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

type UserService struct {
	users *mongo.Collection
}

func NewUserService(users *mongo.Collection) *UserService {
	return &UserService{users: users}
}

// SyncInput carries the identity-provider profile for Sync.
type SyncInput struct {
	AuthUID  string
	Email    string
	Username string
	ImageURL string
}

// Sync upserts the local account for an identity-provider uid. The first
// call creates the document with the baseline role; later calls refresh the
// profile fields and never touch role or social graph.
func (s *UserService) Sync(ctx context.Context, in SyncInput) (*models.User, error) {
	now := time.Now()

	update := bson.M{
		"$set": bson.M{
			"email":      in.Email,
			"username":   in.Username,
			"imageUrl":   in.ImageURL,
			"updatedAt":  now,
		},
		"$setOnInsert": bson.M{
			"auth_uid":               in.AuthUID,
			"role":                   models.RoleUser,
			"friends":                []primitive.ObjectID{},
			"friendRequestsSent":     []primitive.ObjectID{},
			"friendRequestsReceived": []primitive.ObjectID{},
			"createdAt":              now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user models.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"auth_uid": in.AuthUID}, update, opts).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("sync user: %w", err)
	}
	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// UpdateProfileInput holds the fields a user may change on their own
// account. Nil pointers leave the field untouched.
type UpdateProfileInput struct {
	Username *string `json:"username" binding:"omitempty,min=2,max=50"`
	ImageURL *string `json:"imageUrl" binding:"omitempty,url"`
	Country  *string `json:"country" binding:"omitempty,max=60"`
}

func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in UpdateProfileInput) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if in.Username != nil {
		set["username"] = *in.Username
	}
	if in.ImageURL != nil {
		set["imageUrl"] = *in.ImageURL
	}
	if in.Country != nil {
		set["country"] = *in.Country
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": userID}, bson.M{"$set": set}, opts).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &user, nil
}

// SetRole assigns a platform-wide role to the target user.
func (s *UserService) SetRole(ctx context.Context, targetID primitive.ObjectID, role models.Role) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": targetID},
		bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now()}},
		opts,
	).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}
	return &user, nil
}

// Search finds users by username or email prefix, excluding the caller.
func (s *UserService) Search(ctx context.Context, callerID primitive.ObjectID, query string, limit int64) ([]models.User, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}

	filter := bson.M{"_id": bson.M{"$ne": callerID}}
	if query != "" {
		filter["$or"] = []bson.M{
			{"username": bson.M{"$regex": "^" + query, "$options": "i"}},
			{"email": bson.M{"$regex": "^" + query, "$options": "i"}},
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "username", Value: 1}}).
		SetLimit(limit)

	cursor, err := s.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// Friends returns the full documents of the user's friend list.
func (s *UserService) Friends(ctx context.Context, user *models.User) ([]models.User, error) {
	if len(user.Friends) == 0 {
		return []models.User{}, nil
	}

	cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": user.Friends}})
	if err != nil {
		return nil, fmt.Errorf("load friends: %w", err)
	}
	defer cursor.Close(ctx)

	friends := []models.User{}
	if err := cursor.All(ctx, &friends); err != nil {
		return nil, fmt.Errorf("decode friends: %w", err)
	}
	return friends, nil
}
