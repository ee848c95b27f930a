package models

import "time"

// Comment is one node of a post's reply forest. Children are never stored;
// they are the rows whose ParentID points here.
type Comment struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID    int64     `json:"post_id" gorm:"not null;index:idx_comments_post_created"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;index"`
	ParentID  *int64    `json:"parent_id,omitempty" gorm:"index"`
	Content   string    `json:"content" gorm:"not null;type:text"`
	Secret    bool      `json:"secret" gorm:"not null;default:false"`
	Removed   bool      `json:"removed" gorm:"not null;default:false"` // tombstone kept for its children
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index:idx_comments_post_created"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User   User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Post   Post     `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;"`
	Parent *Comment `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE;"`
}

func (Comment) TableName() string {
	return "comments"
}

// IsRoot reports whether the comment starts a thread.
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}
