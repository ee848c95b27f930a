package handler

import (
	"net/http"

	"dtalks/internal/microservices/http-api/dto"
	"dtalks/internal/microservices/http-api/middleware"
	"dtalks/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postService      service.PostService
	recommendService service.RecommendService
}

func NewPostHandler(postService service.PostService, recommendService service.RecommendService) *PostHandler {
	return &PostHandler{postService: postService, recommendService: recommendService}
}

// RegisterPublicRoutes registers read-only post routes
func (h *PostHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/posts", h.List)
	router.GET("/posts/best", h.Best)
	router.GET("/posts/search", h.Search)
	router.GET("/posts/:id", h.Get)
	router.GET("/users/:id/posts", h.ListByUser)
}

// RegisterRoutes registers post write routes (authenticated by parent middleware)
func (h *PostHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/posts", h.Create)
	router.PUT("/posts/:id", h.Update)
	router.DELETE("/posts/:id", h.Delete)
	router.POST("/posts/:id/recommend", h.Recommend)
	router.DELETE("/posts/:id/recommend", h.CancelRecommend)
}

// List returns posts, newest first
// GET /api/posts
func (h *PostHandler) List(c *gin.Context) {
	page, pageSize, ok := bindPage(c)
	if !ok {
		return
	}

	resp, err := h.postService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Best returns the most recommended posts
// GET /api/posts/best
func (h *PostHandler) Best(c *gin.Context) {
	posts, err := h.postService.Best(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": posts})
}

// Search matches the keyword against title and content
// GET /api/posts/search?keyword=
func (h *PostHandler) Search(c *gin.Context) {
	var q dto.SearchPostQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, pageSize := q.Normalize()

	resp, err := h.postService.Search(c.Request.Context(), q.Keyword, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns the post detail and counts a view
// GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	postID, ok := pathID(c, "id", "post")
	if !ok {
		return
	}

	post, err := h.postService.View(c.Request.Context(), postID, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ListByUser returns posts written by one user
// GET /api/users/:id/posts
func (h *PostHandler) ListByUser(c *gin.Context) {
	page, pageSize, ok := bindPage(c)
	if !ok {
		return
	}

	resp, err := h.postService.ListByUser(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create creates a post
// POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.postService.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CreatedResponse{ID: id})
}

// Update edits a post (author only)
// PUT /api/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	postID, ok := pathID(c, "id", "post")
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.postService.Update(c.Request.Context(), postID, userID, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes a post with its comments (author only)
// DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	postID, ok := pathID(c, "id", "post")
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.postService.Delete(c.Request.Context(), postID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Recommend likes a post once per user
// POST /api/posts/:id/recommend
func (h *PostHandler) Recommend(c *gin.Context) {
	postID, ok := pathID(c, "id", "post")
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	resp, err := h.recommendService.Recommend(c.Request.Context(), postID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CancelRecommend withdraws the caller's like
// DELETE /api/posts/:id/recommend
func (h *PostHandler) CancelRecommend(c *gin.Context) {
	postID, ok := pathID(c, "id", "post")
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	resp, err := h.recommendService.Cancel(c.Request.Context(), postID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
