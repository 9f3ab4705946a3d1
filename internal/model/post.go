package model

import (
	"time"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusHidden    = "hidden"
)

type CommunityPost struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	AuthorID     uint      `gorm:"not null;index" json:"author_id"`
	Author       User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Category     string    `gorm:"size:50;not null;index" json:"category"`
	Status       string    `gorm:"size:20;default:published" json:"status"`
	ViewCount    int       `gorm:"default:0" json:"view_count"`
	LikeCount    int       `gorm:"default:0" json:"like_count"`
	CommentCount int       `gorm:"default:0" json:"comment_count"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Comment is stored flat with ParentID as a weak back-reference; reply
// traversal is an indexed lookup by parent_id, only one level is rendered.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	ParentID  *uint     `gorm:"index" json:"parent_id,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PostLike is the liked-by relation: at most one row per (user, post) pair.
type PostLike struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	PostID    uint      `gorm:"primaryKey" json:"post_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PostLike) TableName() string {
	return "user_post_likes"
}
