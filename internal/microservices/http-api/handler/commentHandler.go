package handler

import (
	"net/http"

	"dtalks/internal/microservices/http-api/dto"
	"dtalks/internal/microservices/http-api/middleware"
	"dtalks/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// RegisterPublicRoutes registers read-only comment routes
func (h *CommentHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/posts/:id/comments", h.ListByPost)
	router.GET("/comments/:id", h.GetByID)
	router.GET("/users/nickname/:nickname/comments", h.ListByNickname)
}

// RegisterRoutes registers comment write routes (authenticated by parent middleware)
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/posts/:id/comments", h.Create)
	router.POST("/posts/:id/comments/:parent_id/replies", h.Reply)
	router.PUT("/comments/:id", h.Update)
	router.DELETE("/comments/:id", h.Delete)
}

// ListByPost returns the comment thread of a post
// GET /api/posts/:id/comments
func (h *CommentHandler) ListByPost(c *gin.Context) {
	postID, ok := pathID(c, "id", "post")
	if !ok {
		return
	}

	thread, err := h.commentService.LoadThread(c.Request.Context(), postID, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": thread})
}

// Create creates a top-level comment on a post
// POST /api/posts/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	postID, ok := pathID(c, "id", "post")
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.commentService.CreateTopLevel(c.Request.Context(), postID, userID, req.Content, req.Secret)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreatedResponse{ID: id})
}

// Reply creates a reply under an existing comment
// POST /api/posts/:id/comments/:parent_id/replies
func (h *CommentHandler) Reply(c *gin.Context) {
	postID, ok := pathID(c, "id", "post")
	if !ok {
		return
	}
	parentID, ok := pathID(c, "parent_id", "comment")
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.commentService.CreateReply(c.Request.Context(), postID, parentID, userID, req.Content, req.Secret)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreatedResponse{ID: id})
}

// GetByID returns a single comment
// GET /api/comments/:id
func (h *CommentHandler) GetByID(c *gin.Context) {
	commentID, ok := pathID(c, "id", "comment")
	if !ok {
		return
	}

	comment, err := h.commentService.Get(c.Request.Context(), commentID, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// Update edits a comment (author only)
// PUT /api/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, ok := pathID(c, "id", "comment")
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.UpdateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.commentService.Update(c.Request.Context(), commentID, userID, req.Content, req.Secret); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete removes a comment (author only)
// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := pathID(c, "id", "comment")
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), commentID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListByNickname returns a user's live comments, newest first
// GET /api/users/nickname/:nickname/comments
func (h *CommentHandler) ListByNickname(c *gin.Context) {
	page, pageSize, ok := bindPage(c)
	if !ok {
		return
	}

	resp, err := h.commentService.ListByNickname(c.Request.Context(), c.Param("nickname"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
