package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/JoeLeDev/RSs/internal/models"
	"github.com/JoeLeDev/RSs/internal/realtime"
	"github.com/JoeLeDev/RSs/pkg/auth"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Origin filtering is handled by the CORS layer in front.
		return true
	},
}

type WebSocketHandler struct {
	verifier auth.Verifier
	users    *mongo.Collection
	registry *realtime.Registry
}

func NewWebSocketHandler(verifier auth.Verifier, users *mongo.Collection, registry *realtime.Registry) *WebSocketHandler {
	return &WebSocketHandler{
		verifier: verifier,
		users:    users,
		registry: registry,
	}
}

// HandleWebSocket upgrades the connection and registers it for the token's
// user. Browsers cannot set headers on websocket requests, so the token
// travels as a query parameter.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}

	identity, err := h.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"auth_uid": identity.AuthUID}
	if !identity.UserID.IsZero() {
		filter = bson.M{"_id": identity.UserID}
	}

	var user models.User
	if err := h.users.FindOne(ctx, filter).Decode(&user); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown account"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Websocket upgrade failed")
		return
	}

	realtime.NewClient(h.registry, conn, user.ID)
}
