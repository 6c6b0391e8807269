package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JoeLeDev/RSs/internal/middleware"
	"github.com/JoeLeDev/RSs/internal/services"
)

type PostHandler struct {
	postService *services.PostService
}

func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// GetDashboardFeed serves the global feed. Anonymous readers are welcome.
func (h *PostHandler) GetDashboardFeed(c *gin.Context) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	feed, err := h.postService.DashboardFeed(ctx, middleware.CurrentUser(c),
		intQuery(c, "page", 1), intQuery(c, "limit", 10))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *PostHandler) GetGroupFeed(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	feed, err := h.postService.GroupFeed(ctx, middleware.CurrentUser(c), groupID,
		intQuery(c, "page", 1), intQuery(c, "limit", 10))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	post, err := h.postService.Get(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var req services.CreatePostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	post, err := h.postService.Create(ctx, middleware.CurrentUser(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	post, err := h.postService.Update(ctx, middleware.CurrentUser(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.postService.Delete(ctx, middleware.CurrentUser(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

func (h *PostHandler) LikePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	post, err := h.postService.Like(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) UnlikePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	post, err := h.postService.Unlike(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) AddComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.CommentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	comment, err := h.postService.AddComment(ctx, middleware.CurrentUser(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *PostHandler) UpdateComment(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	var req services.CommentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	comment, err := h.postService.UpdateComment(ctx, middleware.CurrentUser(c), postID, commentID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.postService.DeleteComment(ctx, middleware.CurrentUser(c), postID, commentID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

type HideCommentRequest struct {
	Hidden *bool `json:"hidden" binding:"required"`
}

// HideComment toggles a comment's hidden flag without deleting it.
func (h *PostHandler) HideComment(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	var req HideCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.postService.HideComment(ctx, middleware.CurrentUser(c), postID, commentID, *req.Hidden); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment updated"})
}
