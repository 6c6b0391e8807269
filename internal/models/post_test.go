package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestLikeUnlikeRoundTrip(t *testing.T) {
	user := primitive.NewObjectID()
	post := &Post{ID: primitive.NewObjectID()}

	require.True(t, post.Like(user))
	assert.True(t, post.LikedBy(user))

	require.True(t, post.Unlike(user))
	assert.False(t, post.LikedBy(user))
	assert.Empty(t, post.Likes)
}

func TestDoubleLikeRejected(t *testing.T) {
	user := primitive.NewObjectID()
	post := &Post{ID: primitive.NewObjectID()}

	require.True(t, post.Like(user))
	assert.False(t, post.Like(user))
	assert.Len(t, post.Likes, 1)
}

func TestUnlikeWithoutLikeRejected(t *testing.T) {
	post := &Post{ID: primitive.NewObjectID()}
	assert.False(t, post.Unlike(primitive.NewObjectID()))
}

func TestCommentByIDReturnsMutablePointer(t *testing.T) {
	commentID := primitive.NewObjectID()
	post := &Post{
		ID:       primitive.NewObjectID(),
		Comments: []Comment{{ID: commentID, Content: "bonjour"}},
	}

	comment, ok := post.CommentByID(commentID)
	require.True(t, ok)

	comment.Hidden = true
	assert.True(t, post.Comments[0].Hidden)
}

func TestRemoveComment(t *testing.T) {
	commentID := primitive.NewObjectID()
	post := &Post{
		ID:       primitive.NewObjectID(),
		Comments: []Comment{{ID: commentID}},
	}

	assert.True(t, post.RemoveComment(commentID))
	assert.Empty(t, post.Comments)
	assert.False(t, post.RemoveComment(commentID))
}

func TestInGroup(t *testing.T) {
	groupID := primitive.NewObjectID()
	inGroup := &Post{Group: &groupID}
	dashboard := &Post{}

	assert.True(t, inGroup.InGroup(groupID))
	assert.False(t, inGroup.InGroup(primitive.NewObjectID()))
	assert.False(t, dashboard.InGroup(groupID))
}

// The feeds sort on createdAt; the stored documents must carry that exact
// key or the sort silently becomes a no-op.
func TestStoredTimestampKeys(t *testing.T) {
	now := time.Now()

	for name, doc := range map[string]any{
		"post":         Post{CreatedAt: now, UpdatedAt: now},
		"comment":      Comment{CreatedAt: now},
		"group":        Group{CreatedAt: now, UpdatedAt: now},
		"message":      Message{CreatedAt: now},
		"notification": Notification{CreatedAt: now},
	} {
		raw, err := bson.Marshal(doc)
		require.NoError(t, err, name)

		var stored bson.M
		require.NoError(t, bson.Unmarshal(raw, &stored), name)
		assert.Contains(t, stored, "createdAt", name)
		assert.NotContains(t, stored, "created_at", name)
	}
}
