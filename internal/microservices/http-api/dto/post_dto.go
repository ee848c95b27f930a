package dto

import (
	"time"

	"dtalks/internal/microservices/http-api/models"
)

// CreatePostRequest for creating a post
type CreatePostRequest struct {
	Title   string `json:"title" binding:"required,notblank,max=200"`
	Content string `json:"content" binding:"required,min=1,max=50000"`
}

// UpdatePostRequest for updating a post
type UpdatePostRequest struct {
	Title   string `json:"title" binding:"required,notblank,max=200"`
	Content string `json:"content" binding:"required,min=1,max=50000"`
}

// SearchPostQuery binds /posts/search
type SearchPostQuery struct {
	Keyword string `form:"keyword" binding:"required,min=1,max=100"`
	PageQuery
}

// PostSummary is a post inside a list
type PostSummary struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	Nickname     string    `json:"nickname"`
	Title        string    `json:"title"`
	CommentCount int64     `json:"comment_count"`
	LikeCount    int64     `json:"like_count"`
	ViewCount    int64     `json:"view_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// PostResponse is the post detail page
type PostResponse struct {
	PostSummary
	Content     string    `json:"content"`
	ContentHTML string    `json:"content_html"`
	Recommended bool      `json:"recommended"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FromModelToPostSummary converts a Post model to PostSummary DTO
func FromModelToPostSummary(post *models.Post) PostSummary {
	return PostSummary{
		ID:           post.ID,
		UserID:       post.UserID,
		Nickname:     post.User.Nickname,
		Title:        post.Title,
		CommentCount: post.CommentCount,
		LikeCount:    post.LikeCount,
		ViewCount:    post.ViewCount,
		CreatedAt:    post.CreatedAt,
	}
}

// RecommendResponse reports the like count after a recommend/cancel
type RecommendResponse struct {
	PostID    int64 `json:"post_id"`
	LikeCount int64 `json:"like_count"`
}
