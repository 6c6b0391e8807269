package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/JoeLeDev/RSs/internal/models"
	"github.com/JoeLeDev/RSs/pkg/auth"
)

// bearerToken extracts the token from the Authorization header, or from the
// token query parameter for websocket upgrades where headers are awkward.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}

func resolveUser(c *gin.Context, users *mongo.Collection, identity *auth.Identity) (*models.User, error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"auth_uid": identity.AuthUID}
	if !identity.UserID.IsZero() {
		filter = bson.M{"_id": identity.UserID}
	}

	var user models.User
	if err := users.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// lookupFailure separates a missing account from a database outage. Only
// the former is the caller's fault.
func lookupFailure(err error) (int, string) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return http.StatusUnauthorized, "Unknown account"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// AuthMiddleware verifies the bearer token and loads the account behind it.
// The full user document lands in the context under "user"; handlers that
// only need the id read "user_id".
func AuthMiddleware(verifier auth.Verifier, users *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header is required",
			})
			c.Abort()
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			c.Abort()
			return
		}

		user, err := resolveUser(c, users, identity)
		if err != nil {
			status, message := lookupFailure(err)
			if status == http.StatusInternalServerError {
				logrus.WithError(err).Error("Failed to load account")
			}
			c.JSON(status, gin.H{"error": message})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)

		c.Next()
	}
}

// OptionalAuth loads the user when a valid token is present and stays silent
// otherwise. Routes behind it serve anonymous readers.
func OptionalAuth(verifier auth.Verifier, users *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}

		if user, err := resolveUser(c, users, identity); err == nil {
			c.Set("user", user)
			c.Set("user_id", user.ID)
		}

		c.Next()
	}
}

// CurrentUser returns the authenticated user from the context, or nil for
// anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get("user")
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
