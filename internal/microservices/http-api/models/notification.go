package models

import "time"

type NotificationType string

const (
	NotificationComment       NotificationType = "COMMENT"
	NotificationRecomment     NotificationType = "RECOMMENT"
	NotificationRecommendPost NotificationType = "RECOMMEND_POST"
)

type ReadStatus string

const (
	ReadStatusUnread ReadStatus = "UNREAD"
	ReadStatusRead   ReadStatus = "READ"
	// ReadStatusReadDataGone marks a read notification whose source was deleted.
	ReadStatusReadDataGone ReadStatus = "READ_DATA_GONE"
)

type Notification struct {
	ID         int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	ReceiverID string           `gorm:"type:uuid;not null;index" json:"receiver_id"`
	RefID      *int64           `gorm:"uniqueIndex:idx_notifications_ref" json:"ref_id,omitempty"`
	Type       NotificationType `gorm:"type:varchar(20);not null;uniqueIndex:idx_notifications_ref" json:"type"`
	PostID     *int64           `json:"post_id,omitempty"`
	Message    string           `json:"message"`
	ReadStatus ReadStatus       `gorm:"type:varchar(20);not null;default:'UNREAD';index" json:"read_status"`
	CreatedAt  time.Time        `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	Receiver *User `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) IsRead() bool {
	return n.ReadStatus != ReadStatusUnread
}
