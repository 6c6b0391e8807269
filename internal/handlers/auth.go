package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JoeLeDev/RSs/internal/services"
	"github.com/JoeLeDev/RSs/pkg/auth"
)

type AuthHandler struct {
	verifier    auth.Verifier
	userService *services.UserService
}

func NewAuthHandler(verifier auth.Verifier, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		verifier:    verifier,
		userService: userService,
	}
}

type SyncRequest struct {
	Token    string `json:"token" binding:"required"`
	Username string `json:"username" binding:"required,min=2,max=50"`
	ImageURL string `json:"imageUrl" binding:"omitempty,url"`
}

// Sync exchanges an identity-provider token for the local account, creating
// it on first sight. The frontend calls it right after sign-in.
func (h *AuthHandler) Sync(c *gin.Context) {
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	identity, err := h.verifier.Verify(c.Request.Context(), req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.userService.Sync(ctx, services.SyncInput{
		AuthUID:  identity.AuthUID,
		Email:    identity.Email,
		Username: req.Username,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
