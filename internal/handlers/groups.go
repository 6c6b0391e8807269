package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JoeLeDev/RSs/internal/middleware"
	"github.com/JoeLeDev/RSs/internal/models"
	"github.com/JoeLeDev/RSs/internal/services"
)

type GroupHandler struct {
	groupService *services.GroupService
}

func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

func (h *GroupHandler) GetGroups(c *gin.Context) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	groups, err := h.groupService.List(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *GroupHandler) GetGroup(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	group, err := h.groupService.Get(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) GetMyGroups(c *gin.Context) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	groups, err := h.groupService.MyGroups(ctx, middleware.CurrentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req services.CreateGroupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	group, err := h.groupService.Create(ctx, middleware.CurrentUser(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateGroupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	group, err := h.groupService.Update(ctx, middleware.CurrentUser(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.groupService.Delete(ctx, middleware.CurrentUser(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
}

func (h *GroupHandler) JoinGroup(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	group, err := h.groupService.Join(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	group, err := h.groupService.Leave(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) GetMembers(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	members, err := h.groupService.Members(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *GroupHandler) KickMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	group, err := h.groupService.Kick(ctx, middleware.CurrentUser(c), id, memberID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

type ChangeRoleRequest struct {
	// MemberID empty vacates the pilot seat.
	MemberID string `json:"memberId" binding:"omitempty,objectid"`
	Role     string `json:"role" binding:"required,grouprole"`
}

func (h *GroupHandler) ChangeRole(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	memberID := primitive.NilObjectID
	if req.MemberID != "" {
		memberID, _ = primitive.ObjectIDFromHex(req.MemberID)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	group, err := h.groupService.ChangeRole(ctx, middleware.CurrentUser(c), id, memberID, models.GroupRole(req.Role))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}
