package model

import (
	"strings"
	"time"
)

const (
	ResourceStatusDraft     = "draft"
	ResourceStatusPublished = "published"
	ResourceStatusArchived  = "archived"
)

// CulturalResource is a curated article: historic sites, traditional arts,
// folk literature and so on. Likes here are a plain applause counter with no
// per-user relation, unlike community posts.
type CulturalResource struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Content     string    `gorm:"type:text" json:"content"`
	Type        string    `gorm:"size:50;not null" json:"type"`
	Category    string    `gorm:"size:50;not null;index" json:"category"`
	Tags        string    `gorm:"size:200" json:"tags"`
	Author      string    `gorm:"size:100" json:"author"`
	Source      string    `gorm:"size:200" json:"source"`
	CoverImage  string    `gorm:"size:255" json:"cover_image"`
	MediaURL    string    `gorm:"size:255" json:"media_url"`
	Status      string    `gorm:"size:20;default:published" json:"status"`
	Priority    int       `gorm:"default:0" json:"priority"`
	ViewCount   int       `gorm:"default:0" json:"view_count"`
	LikeCount   int       `gorm:"default:0" json:"like_count"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TagList splits the stored comma-joined tags, preserving order. Tag values
// must not contain commas; the join is not escaped.
func (r *CulturalResource) TagList() []string {
	if r.Tags == "" {
		return []string{}
	}
	return strings.Split(r.Tags, ",")
}

func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}
