package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	userID := primitive.NewObjectID()

	token, err := manager.GenerateToken(userID, "uid-123", "jean@example.com", "admin")
	require.NoError(t, err)

	identity, err := manager.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, "uid-123", identity.AuthUID)
	assert.Equal(t, "jean@example.com", identity.Email)
	assert.Equal(t, "admin", identity.Role)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	other := NewJWTManager("other-secret", time.Hour)

	token, err := manager.GenerateToken(primitive.NewObjectID(), "uid-123", "jean@example.com", "user")
	require.NoError(t, err)

	_, err = other.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)

	token, err := manager.GenerateToken(primitive.NewObjectID(), "uid-123", "jean@example.com", "user")
	require.NoError(t, err)

	_, err = manager.Verify(context.Background(), token)
	assert.Error(t, err)
}
