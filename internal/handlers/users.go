package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JoeLeDev/RSs/internal/middleware"
	"github.com/JoeLeDev/RSs/internal/models"
	"github.com/JoeLeDev/RSs/internal/services"
)

type UserHandler struct {
	userService       *services.UserService
	friendshipService *services.FriendshipService
}

func NewUserHandler(userService *services.UserService, friendshipService *services.FriendshipService) *UserHandler {
	return &UserHandler{
		userService:       userService,
		friendshipService: friendshipService,
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.userService.UpdateProfile(ctx, middleware.CurrentUser(c).ID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUser returns another user's public profile plus the relation the
// caller has with them.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.userService.GetByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}

	caller := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"relation": caller.RelationTo(user.ID),
	})
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	caller := middleware.CurrentUser(c)
	users, err := h.userService.Search(ctx, caller.ID, c.Query("q"), intQuery(c, "limit", 20))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetFriends(c *gin.Context) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	friends, err := h.userService.Friends(ctx, middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, friends)
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetUserRole assigns a platform role. Reserved to admins by the route.
func (h *UserHandler) SetUserRole(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	role, valid := models.RoleFromString(req.Role)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Unknown role",
			"details": "role must be one of: " + rolesList(),
		})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.userService.SetRole(ctx, id, role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func rolesList() string {
	out := ""
	for i, role := range models.AllRoles() {
		if i > 0 {
			out += ", "
		}
		out += role.String()
	}
	return out
}

type FriendActionRequest struct {
	UserID string `json:"userId" binding:"required,objectid"`
}

// friendAction binds the shared {userId} payload and runs one friendship
// transition.
func (h *UserHandler) friendAction(c *gin.Context, action func(*gin.Context, *FriendActionRequest)) {
	var req FriendActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	action(c, &req)
}

func (h *UserHandler) SendFriendRequest(c *gin.Context) {
	h.friendAction(c, func(c *gin.Context, req *FriendActionRequest) {
		ctx, cancel := reqCtx(c)
		defer cancel()

		targetID, _ := primitive.ObjectIDFromHex(req.UserID)
		if err := h.friendshipService.Request(ctx, middleware.CurrentUser(c), targetID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Friend request sent"})
	})
}

func (h *UserHandler) AcceptFriendRequest(c *gin.Context) {
	h.friendAction(c, func(c *gin.Context, req *FriendActionRequest) {
		ctx, cancel := reqCtx(c)
		defer cancel()

		targetID, _ := primitive.ObjectIDFromHex(req.UserID)
		if err := h.friendshipService.Accept(ctx, middleware.CurrentUser(c), targetID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
	})
}

func (h *UserHandler) RejectFriendRequest(c *gin.Context) {
	h.friendAction(c, func(c *gin.Context, req *FriendActionRequest) {
		ctx, cancel := reqCtx(c)
		defer cancel()

		targetID, _ := primitive.ObjectIDFromHex(req.UserID)
		if err := h.friendshipService.Reject(ctx, middleware.CurrentUser(c), targetID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Friend request rejected"})
	})
}

func (h *UserHandler) CancelFriendRequest(c *gin.Context) {
	h.friendAction(c, func(c *gin.Context, req *FriendActionRequest) {
		ctx, cancel := reqCtx(c)
		defer cancel()

		targetID, _ := primitive.ObjectIDFromHex(req.UserID)
		if err := h.friendshipService.Cancel(ctx, middleware.CurrentUser(c), targetID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Friend request cancelled"})
	})
}

func (h *UserHandler) RemoveFriend(c *gin.Context) {
	h.friendAction(c, func(c *gin.Context, req *FriendActionRequest) {
		ctx, cancel := reqCtx(c)
		defer cancel()

		targetID, _ := primitive.ObjectIDFromHex(req.UserID)
		if err := h.friendshipService.Remove(ctx, middleware.CurrentUser(c), targetID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
	})
}
