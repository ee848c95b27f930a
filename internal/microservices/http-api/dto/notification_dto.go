package dto

import (
	"time"

	"dtalks/internal/microservices/http-api/models"
)

// NotificationResponse for returning a notification
type NotificationResponse struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	RefID      *int64    `json:"ref_id,omitempty"`
	PostID     *int64    `json:"post_id,omitempty"`
	Message    string    `json:"message"`
	ReadStatus string    `json:"read_status"`
	CreatedAt  time.Time `json:"created_at"`
}

func FromModelToNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		Type:       string(n.Type),
		RefID:      n.RefID,
		PostID:     n.PostID,
		Message:    n.Message,
		ReadStatus: string(n.ReadStatus),
		CreatedAt:  n.CreatedAt,
	}
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

type ReadAllResponse struct {
	Updated int64 `json:"updated"`
}
