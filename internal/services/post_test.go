package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JoeLeDev/RSs/internal/models"
)

func TestSanitizeFiltersHiddenComments(t *testing.T) {
	author := &models.User{ID: primitive.NewObjectID()}
	other := &models.User{ID: primitive.NewObjectID()}

	post := func() *models.Post {
		return &models.Post{
			Comments: []models.Comment{
				{ID: primitive.NewObjectID(), Author: author.ID, Content: "visible"},
				{ID: primitive.NewObjectID(), Author: author.ID, Content: "masqué", Hidden: true},
			},
		}
	}

	// Anonymous readers never see hidden comments.
	p := post()
	sanitize(p, nil)
	assert.Len(t, p.Comments, 1)
	assert.Equal(t, "visible", p.Comments[0].Content)

	// Other users do not either.
	p = post()
	sanitize(p, other)
	assert.Len(t, p.Comments, 1)

	// The comment's own author still sees it.
	p = post()
	sanitize(p, author)
	assert.Len(t, p.Comments, 2)
}

func TestInteractionRecipient(t *testing.T) {
	author := primitive.NewObjectID()
	visitor := primitive.NewObjectID()
	post := &models.Post{ID: primitive.NewObjectID(), Author: author}

	// Someone else's like or comment notifies the post author.
	recipient, ok := interactionRecipient(post, visitor)
	assert.True(t, ok)
	assert.Equal(t, author, recipient)

	// Acting on your own post notifies nobody.
	_, ok = interactionRecipient(post, author)
	assert.False(t, ok)
}
