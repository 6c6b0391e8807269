package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JoeLeDev/RSs/internal/ability"
	"github.com/JoeLeDev/RSs/internal/apperr"
	"github.com/JoeLeDev/RSs/internal/models"
)

type GroupService struct {
	groups        *mongo.Collection
	users         *mongo.Collection
	posts         *mongo.Collection
	notifications *NotificationService
}

func NewGroupService(groups, users, posts *mongo.Collection, notifications *NotificationService) *GroupService {
	return &GroupService{
		groups:        groups,
		users:         users,
		posts:         posts,
		notifications: notifications,
	}
}

func (s *GroupService) get(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var group models.Group
	err := s.groups.FindOne(ctx, bson.M{"_id": id}).Decode(&group)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("group not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}
	return &group, nil
}

// Get returns one group. Groups are publicly readable, including by
// anonymous visitors.
func (s *GroupService) Get(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	return s.get(ctx, id)
}

// List returns every group, newest first.
func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.groups.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer cursor.Close(ctx)

	groups := []models.Group{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	return groups, nil
}

// CreateGroupInput is the payload for Create.
type CreateGroupInput struct {
	Name            string `json:"name" binding:"required,min=2,max=100"`
	Description     string `json:"description" binding:"max=500"`
	MeetingDay      string `json:"meetingDay" binding:"required"`
	MeetingLocation string `json:"meetingLocation"`
}

// Create makes a new group. Reserved to roles holding manage on groups; the
// creator becomes the first member and pilote.
func (s *GroupService) Create(ctx context.Context, caller *models.User, in CreateGroupInput) (*models.Group, error) {
	if ability.For(caller, nil).Cannot(ability.ActionCreate, ability.SubjectGroup) {
		return nil, apperr.PermissionDenied("not allowed to create groups")
	}

	now := time.Now()
	group := models.Group{
		Name:            in.Name,
		Description:     in.Description,
		MeetingDay:      in.MeetingDay,
		MeetingLocation: in.MeetingLocation,
		CreatedBy:       caller.ID,
		Members:         []primitive.ObjectID{caller.ID},
		Roles:           []models.RoleEntry{{UserID: caller.ID, Role: models.GroupRolePilote}},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	result, err := s.groups.InsertOne(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	group.ID = result.InsertedID.(primitive.ObjectID)
	return &group, nil
}

// UpdateGroupInput holds the editable fields; nil pointers are untouched.
type UpdateGroupInput struct {
	Name            *string `json:"name" binding:"omitempty,min=2,max=100"`
	Description     *string `json:"description" binding:"omitempty,max=500"`
	MeetingDay      *string `json:"meetingDay" binding:"omitempty"`
	MeetingLocation *string `json:"meetingLocation" binding:"omitempty"`
}

func (s *GroupService) Update(ctx context.Context, caller *models.User, groupID primitive.ObjectID, in UpdateGroupInput) (*models.Group, error) {
	group, err := s.get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if ability.For(caller, group).Cannot(ability.ActionUpdate, ability.SubjectGroup, group) {
		return nil, apperr.PermissionDenied("not allowed to update this group")
	}

	set := bson.M{"updatedAt": time.Now()}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.MeetingDay != nil {
		set["meetingDay"] = *in.MeetingDay
	}
	if in.MeetingLocation != nil {
		set["meetingLocation"] = *in.MeetingLocation
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Group
	if err := s.groups.FindOneAndUpdate(ctx, bson.M{"_id": groupID}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	return &updated, nil
}

// Delete removes the group and its posts.
func (s *GroupService) Delete(ctx context.Context, caller *models.User, groupID primitive.ObjectID) error {
	group, err := s.get(ctx, groupID)
	if err != nil {
		return err
	}

	if ability.For(caller, group).Cannot(ability.ActionDelete, ability.SubjectGroup, group) {
		return apperr.PermissionDenied("not allowed to delete this group")
	}

	if _, err := s.groups.DeleteOne(ctx, bson.M{"_id": groupID}); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if _, err := s.posts.DeleteMany(ctx, bson.M{"group": groupID}); err != nil {
		return fmt.Errorf("delete group posts: %w", err)
	}
	return nil
}

// Join adds the caller as a membre. Joining a group the caller already
// belongs to succeeds without changing anything. The pilot is notified of
// genuine arrivals.
func (s *GroupService) Join(ctx context.Context, caller *models.User, groupID primitive.ObjectID) (*models.Group, error) {
	group, err := s.get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if ability.For(caller, group).Cannot(ability.ActionJoin, ability.SubjectGroup, group) {
		return nil, apperr.PermissionDenied("not allowed to join groups")
	}

	if !group.Join(caller.ID) {
		return group, nil
	}

	if _, err := s.groups.UpdateOne(ctx,
		bson.M{"_id": groupID},
		bson.M{
			"$addToSet": bson.M{
				"members": caller.ID,
				"roles":   models.RoleEntry{UserID: caller.ID, Role: models.GroupRoleMembre},
			},
			"$set": bson.M{"updatedAt": group.UpdatedAt},
		},
	); err != nil {
		return nil, fmt.Errorf("join group: %w", err)
	}

	if pilot, ok := group.Pilot(); ok && pilot != caller.ID {
		s.notifications.NotifyGroupJoin(ctx, pilot, caller.Username, group.ID)
	}
	return group, nil
}

// Leave removes the caller from the group. A leaving pilot vacates the seat
// with no successor.
func (s *GroupService) Leave(ctx context.Context, caller *models.User, groupID primitive.ObjectID) (*models.Group, error) {
	group, err := s.get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if ability.For(caller, group).Cannot(ability.ActionLeave, ability.SubjectGroup, group) {
		return nil, apperr.PermissionDenied("not allowed to leave groups")
	}
	if !group.IsMember(caller.ID) {
		return nil, apperr.Validation("not a member of this group")
	}

	group.RemoveMember(caller.ID)
	if err := s.persistMembership(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Kick removes another member. Kicking yourself is rejected; kicking someone
// who already left succeeds without effect.
func (s *GroupService) Kick(ctx context.Context, caller *models.User, groupID, memberID primitive.ObjectID) (*models.Group, error) {
	group, err := s.get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if ability.For(caller, group).Cannot(ability.ActionKick, ability.SubjectGroup, group) {
		return nil, apperr.PermissionDenied("not allowed to remove members from this group")
	}
	if memberID == caller.ID {
		return nil, apperr.Validation("cannot kick yourself")
	}

	if !group.RemoveMember(memberID) {
		return group, nil
	}
	if err := s.persistMembership(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// ChangeRole reassigns the pilot seat. Passing the zero member id leaves the
// group without a pilot.
func (s *GroupService) ChangeRole(ctx context.Context, caller *models.User, groupID, memberID primitive.ObjectID, role models.GroupRole) (*models.Group, error) {
	group, err := s.get(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if ability.For(caller, group).Cannot(ability.ActionChangeRole, ability.SubjectGroup, group) {
		return nil, apperr.PermissionDenied("not allowed to change roles in this group")
	}
	if !role.IsValid() {
		return nil, apperr.Validation("unknown group role")
	}

	if !group.ChangeRole(memberID, role) {
		return nil, apperr.Validation("user is not a member of this group")
	}
	if err := s.persistMembership(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// persistMembership writes back Members and Roles wholesale. Transitions
// that rewrite the role table (leave, kick, pilot change) need the full
// replacement rather than incremental operators.
func (s *GroupService) persistMembership(ctx context.Context, group *models.Group) error {
	_, err := s.groups.UpdateOne(ctx,
		bson.M{"_id": group.ID},
		bson.M{"$set": bson.M{
			"members":   group.Members,
			"roles":     group.Roles,
			"updatedAt": group.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("persist group membership: %w", err)
	}
	return nil
}

// Members loads the member documents of a group.
func (s *GroupService) Members(ctx context.Context, groupID primitive.ObjectID) ([]models.User, error) {
	group, err := s.get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(group.Members) == 0 {
		return []models.User{}, nil
	}

	cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": group.Members}})
	if err != nil {
		return nil, fmt.Errorf("load group members: %w", err)
	}
	defer cursor.Close(ctx)

	members := []models.User{}
	if err := cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("decode group members: %w", err)
	}
	return members, nil
}

// MyGroups returns the groups the user belongs to.
func (s *GroupService) MyGroups(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.groups.Find(ctx, bson.M{"members": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list user groups: %w", err)
	}
	defer cursor.Close(ctx)

	groups := []models.Group{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode user groups: %w", err)
	}
	return groups, nil
}
