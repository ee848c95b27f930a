package models

import "time"

// PostRecommendation records one user's like of one post.
type PostRecommendation struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_recommend_user_post" json:"user_id"`
	PostID    int64     `gorm:"not null;uniqueIndex:idx_recommend_user_post" json:"post_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Post *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (PostRecommendation) TableName() string {
	return "post_recommendations"
}
