package models

import "time"

type Post struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       string    `json:"user_id" gorm:"type:uuid;not null;index"`
	Title        string    `json:"title" gorm:"not null"`
	Content      string    `json:"content" gorm:"not null;type:text"`
	CommentCount int64     `json:"comment_count" gorm:"not null;default:0"`
	LikeCount    int64     `json:"like_count" gorm:"not null;default:0;index"`
	ViewCount    int64     `json:"view_count" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}

func (Post) TableName() string {
	return "posts"
}
