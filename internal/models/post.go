package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment lives embedded inside its parent post and has no standalone
// lifecycle: deleting the post disposes of its comments. Hidden comments
// stay stored and are only filtered at read time.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Content   string             `bson:"content" json:"content"`
	Hidden    bool               `bson:"hidden" json:"hidden"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Post struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Author   primitive.ObjectID  `bson:"author" json:"author"`
	Group    *primitive.ObjectID `bson:"group,omitempty" json:"group,omitempty"` // nil = dashboard post
	Content  string              `bson:"content" json:"content"`
	FileURL  string              `bson:"fileUrl,omitempty" json:"fileUrl,omitempty"`
	FileType string              `bson:"fileType,omitempty" json:"fileType,omitempty"`

	Likes    []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments []Comment            `bson:"comments" json:"comments"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	return containsID(p.Likes, userID)
}

// Like appends the user to Likes. Liking twice is rejected so the list never
// holds duplicates.
func (p *Post) Like(userID primitive.ObjectID) bool {
	if p.LikedBy(userID) {
		return false
	}
	p.Likes = append(p.Likes, userID)
	return true
}

// Unlike removes the user from Likes; it fails when the user had not liked
// the post.
func (p *Post) Unlike(userID primitive.ObjectID) bool {
	if !p.LikedBy(userID) {
		return false
	}
	p.Likes = removeID(p.Likes, userID)
	return true
}

// CommentByID returns a pointer into the Comments slice, so callers can
// mutate the comment in place before saving the post.
func (p *Post) CommentByID(id primitive.ObjectID) (*Comment, bool) {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i], true
		}
	}
	return nil, false
}

// RemoveComment drops the comment with the given id; it reports whether a
// comment was actually removed.
func (p *Post) RemoveComment(id primitive.ObjectID) bool {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return true
		}
	}
	return false
}

// InGroup reports whether the post belongs to the given group.
func (p *Post) InGroup(groupID primitive.ObjectID) bool {
	return p.Group != nil && *p.Group == groupID
}
