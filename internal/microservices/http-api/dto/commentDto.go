package dto

import (
	"time"

	"dtalks/internal/microservices/http-api/models"
)

const (
	// DeletedCommentContent replaces the body of a tombstoned comment
	DeletedCommentContent = "deleted comment"
	// SecretCommentContent replaces the body of a secret comment for other viewers
	SecretCommentContent = "secret comment"
)

// CreateCommentDTO for creating a comment or a reply
type CreateCommentDTO struct {
	Content string `json:"content" binding:"required,max=20000"`
	Secret  bool   `json:"secret"`
}

// UpdateCommentDTO for updating a comment
type UpdateCommentDTO struct {
	Content string `json:"content" binding:"required,max=20000"`
	Secret  bool   `json:"secret"`
}

// CreatedResponse carries the id of a newly created resource
type CreatedResponse struct {
	ID int64 `json:"id"`
}

// CommentView is one node of a rendered thread. Replies of any depth are
// listed under their root.
type CommentView struct {
	ID          int64          `json:"id"`
	PostID      int64          `json:"post_id"`
	ParentID    *int64         `json:"parent_id,omitempty"`
	UserID      string         `json:"user_id"`
	Nickname    string         `json:"nickname"`
	Content     string         `json:"content"`
	ContentHTML string         `json:"content_html"`
	Secret      bool           `json:"secret"`
	Removed     bool           `json:"removed"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Children    []*CommentView `json:"children,omitempty"`
}

// FromModelToCommentView copies a comment as-is; masking is up to the caller
func FromModelToCommentView(comment *models.Comment) *CommentView {
	return &CommentView{
		ID:        comment.ID,
		PostID:    comment.PostID,
		ParentID:  comment.ParentID,
		UserID:    comment.UserID,
		Nickname:  comment.User.Nickname,
		Content:   comment.Content,
		Secret:    comment.Secret,
		Removed:   comment.Removed,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

// UserCommentResponse is a live comment listed on its author's profile
type UserCommentResponse struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	PostTitle string    `json:"post_title"`
	Content   string    `json:"content"`
	Secret    bool      `json:"secret"`
	CreatedAt time.Time `json:"created_at"`
}

// FromModelToUserCommentResponse expects comment.Post to be loaded
func FromModelToUserCommentResponse(comment *models.Comment) UserCommentResponse {
	content := comment.Content
	if comment.Secret {
		content = SecretCommentContent
	}
	return UserCommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		PostTitle: comment.Post.Title,
		Content:   content,
		Secret:    comment.Secret,
		CreatedAt: comment.CreatedAt,
	}
}
