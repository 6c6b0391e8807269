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

type PostService struct {
	posts         *mongo.Collection
	groups        *mongo.Collection
	notifications *NotificationService
}

func NewPostService(posts, groups *mongo.Collection, notifications *NotificationService) *PostService {
	return &PostService{
		posts:         posts,
		groups:        groups,
		notifications: notifications,
	}
}

func (s *PostService) get(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	return &post, nil
}

// groupOf loads the post's group, or nil for dashboard posts.
func (s *PostService) groupOf(ctx context.Context, post *models.Post) (*models.Group, error) {
	if post.Group == nil {
		return nil, nil
	}
	var group models.Group
	err := s.groups.FindOne(ctx, bson.M{"_id": *post.Group}).Decode(&group)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load post group: %w", err)
	}
	return &group, nil
}

// sanitize strips comments the viewer must not see. Hidden comments remain
// visible to their own author.
// interactionRecipient decides who gets notified when actor likes or
// comments on post. Acting on your own post notifies nobody.
func interactionRecipient(post *models.Post, actor primitive.ObjectID) (primitive.ObjectID, bool) {
	if post.Author == actor {
		return primitive.NilObjectID, false
	}
	return post.Author, true
}

func sanitize(post *models.Post, viewer *models.User) {
	comments := post.Comments[:0]
	for _, c := range post.Comments {
		if c.Hidden && (viewer == nil || viewer.ID != c.Author) {
			continue
		}
		comments = append(comments, c)
	}
	post.Comments = comments
}

// Feed is one page of posts; HasMore tells the client whether to ask for
// the next page.
type Feed struct {
	Posts   []models.Post `json:"posts"`
	Page    int64         `json:"page"`
	HasMore bool          `json:"hasMore"`
}

// DashboardFeed pages through posts that belong to no group, newest first.
func (s *PostService) DashboardFeed(ctx context.Context, viewer *models.User, page, limit int64) (*Feed, error) {
	return s.feed(ctx, viewer, bson.M{"group": nil}, page, limit)
}

// GroupFeed pages through one group's posts, newest first.
func (s *PostService) GroupFeed(ctx context.Context, viewer *models.User, groupID primitive.ObjectID, page, limit int64) (*Feed, error) {
	return s.feed(ctx, viewer, bson.M{"group": groupID}, page, limit)
}

func (s *PostService) feed(ctx context.Context, viewer *models.User, filter bson.M, page, limit int64) (*Feed, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	// Fetch one extra document to learn whether a next page exists.
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit + 1)

	cursor, err := s.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	hasMore := int64(len(posts)) > limit
	if hasMore {
		posts = posts[:limit]
	}
	for i := range posts {
		sanitize(&posts[i], viewer)
	}

	return &Feed{Posts: posts, Page: page, HasMore: hasMore}, nil
}

// Get returns one post, readable by anyone.
func (s *PostService) Get(ctx context.Context, viewer *models.User, id primitive.ObjectID) (*models.Post, error) {
	post, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	sanitize(post, viewer)
	return post, nil
}

// CreatePostInput is the payload for Create. GroupID empty means a
// dashboard post.
type CreatePostInput struct {
	Content  string `json:"content" binding:"required,max=5000"`
	GroupID  string `json:"groupId" binding:"omitempty,objectid"`
	FileURL  string `json:"fileUrl" binding:"omitempty,url"`
	FileType string `json:"fileType"`
}

func (s *PostService) Create(ctx context.Context, caller *models.User, in CreatePostInput) (*models.Post, error) {
	if ability.For(caller, nil).Cannot(ability.ActionCreate, ability.SubjectPost) {
		return nil, apperr.PermissionDenied("not allowed to create posts")
	}

	var groupRef *primitive.ObjectID
	if in.GroupID != "" {
		groupID, err := primitive.ObjectIDFromHex(in.GroupID)
		if err != nil {
			return nil, apperr.Validation("invalid group id")
		}

		var group models.Group
		err = s.groups.FindOne(ctx, bson.M{"_id": groupID}).Decode(&group)
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("group not found")
		}
		if err != nil {
			return nil, fmt.Errorf("load group: %w", err)
		}
		if !group.IsMember(caller.ID) {
			return nil, apperr.PermissionDenied("only members can post in this group")
		}
		groupRef = &groupID
	}

	now := time.Now()
	post := models.Post{
		Author:    caller.ID,
		Group:     groupRef,
		Content:   in.Content,
		FileURL:   in.FileURL,
		FileType:  in.FileType,
		Likes:     []primitive.ObjectID{},
		Comments:  []models.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := s.posts.InsertOne(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.ID = result.InsertedID.(primitive.ObjectID)
	return &post, nil
}

// UpdatePostInput holds the editable fields of a post.
type UpdatePostInput struct {
	Content string `json:"content" binding:"required,max=5000"`
}

func (s *PostService) Update(ctx context.Context, caller *models.User, postID primitive.ObjectID, in UpdatePostInput) (*models.Post, error) {
	post, err := s.get(ctx, postID)
	if err != nil {
		return nil, err
	}

	if ability.For(caller, nil).Cannot(ability.ActionUpdate, ability.SubjectPost, post) {
		return nil, apperr.PermissionDenied("not allowed to update this post")
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Post
	err = s.posts.FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		bson.M{"$set": bson.M{"content": in.Content, "updatedAt": time.Now()}},
		opts,
	).Decode(&updated)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	sanitize(&updated, caller)
	return &updated, nil
}

func (s *PostService) Delete(ctx context.Context, caller *models.User, postID primitive.ObjectID) error {
	post, err := s.get(ctx, postID)
	if err != nil {
		return err
	}

	if ability.For(caller, nil).Cannot(ability.ActionDelete, ability.SubjectPost, post) {
		return apperr.PermissionDenied("not allowed to delete this post")
	}

	if _, err := s.posts.DeleteOne(ctx, bson.M{"_id": postID}); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// Like records the caller's like. Liking twice is rejected.
func (s *PostService) Like(ctx context.Context, caller *models.User, postID primitive.ObjectID) (*models.Post, error) {
	post, err := s.get(ctx, postID)
	if err != nil {
		return nil, err
	}

	if ability.For(caller, nil).Cannot(ability.ActionLike, ability.SubjectPost, post) {
		return nil, apperr.PermissionDenied("not allowed to like posts")
	}
	if !post.Like(caller.ID) {
		return nil, apperr.Validation("post already liked")
	}

	if _, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$addToSet": bson.M{"likes": caller.ID}},
	); err != nil {
		return nil, fmt.Errorf("like post: %w", err)
	}

	if recipient, ok := interactionRecipient(post, caller.ID); ok {
		s.notifications.NotifyLike(ctx, recipient, caller.Username, post.ID)
	}
	sanitize(post, caller)
	return post, nil
}

// Unlike withdraws a like. Without a prior like the ability engine denies
// the action.
func (s *PostService) Unlike(ctx context.Context, caller *models.User, postID primitive.ObjectID) (*models.Post, error) {
	post, err := s.get(ctx, postID)
	if err != nil {
		return nil, err
	}

	if ability.For(caller, nil).Cannot(ability.ActionUnlike, ability.SubjectPost, post) {
		if !post.LikedBy(caller.ID) {
			return nil, apperr.Validation("post not liked")
		}
		return nil, apperr.PermissionDenied("cannot unlike this post")
	}
	post.Unlike(caller.ID)

	if _, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"likes": caller.ID}},
	); err != nil {
		return nil, fmt.Errorf("unlike post: %w", err)
	}
	sanitize(post, caller)
	return post, nil
}

// CommentInput is the payload for AddComment and UpdateComment.
type CommentInput struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// AddComment appends a comment and notifies the post author.
func (s *PostService) AddComment(ctx context.Context, caller *models.User, postID primitive.ObjectID, in CommentInput) (*models.Comment, error) {
	post, err := s.get(ctx, postID)
	if err != nil {
		return nil, err
	}

	if ability.For(caller, nil).Cannot(ability.ActionCreate, ability.SubjectComment) {
		return nil, apperr.PermissionDenied("not allowed to comment")
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		Author:    caller.ID,
		Content:   in.Content,
		CreatedAt: time.Now(),
	}

	if _, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": comment}},
	); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	if recipient, ok := interactionRecipient(post, caller.ID); ok {
		s.notifications.NotifyComment(ctx, recipient, caller.Username, post.ID)
	}
	return &comment, nil
}

func (s *PostService) UpdateComment(ctx context.Context, caller *models.User, postID, commentID primitive.ObjectID, in CommentInput) (*models.Comment, error) {
	post, err := s.get(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment, ok := post.CommentByID(commentID)
	if !ok {
		return nil, apperr.NotFound("comment not found")
	}
	if ability.For(caller, nil).Cannot(ability.ActionUpdate, ability.SubjectComment, comment) {
		return nil, apperr.PermissionDenied("not allowed to update this comment")
	}

	comment.Content = in.Content
	if _, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": postID, "comments._id": commentID},
		bson.M{"$set": bson.M{"comments.$.content": in.Content}},
	); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

func (s *PostService) DeleteComment(ctx context.Context, caller *models.User, postID, commentID primitive.ObjectID) error {
	post, err := s.get(ctx, postID)
	if err != nil {
		return err
	}

	comment, ok := post.CommentByID(commentID)
	if !ok {
		return apperr.NotFound("comment not found")
	}
	if ability.For(caller, nil).Cannot(ability.ActionDelete, ability.SubjectComment, comment) {
		return apperr.PermissionDenied("not allowed to delete this comment")
	}

	if _, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}},
	); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// HideComment flags a comment without deleting it. The post's author may
// moderate comments under their post; the pilote of the post's group and
// admins may as well.
func (s *PostService) HideComment(ctx context.Context, caller *models.User, postID, commentID primitive.ObjectID, hidden bool) error {
	post, err := s.get(ctx, postID)
	if err != nil {
		return err
	}

	if _, ok := post.CommentByID(commentID); !ok {
		return apperr.NotFound("comment not found")
	}

	group, err := s.groupOf(ctx, post)
	if err != nil {
		return err
	}
	if ability.For(caller, group).Cannot(ability.ActionHide, ability.SubjectComment, post) {
		return apperr.PermissionDenied("not allowed to moderate this comment")
	}

	if _, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": postID, "comments._id": commentID},
		bson.M{"$set": bson.M{"comments.$.hidden": hidden}},
	); err != nil {
		return fmt.Errorf("hide comment: %w", err)
	}
	return nil
}
