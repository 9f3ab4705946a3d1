package dto

type CreateResourceRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Content     string   `json:"content" binding:"required"`
	Type        string   `json:"type" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Tags        []string `json:"tags"`
	Author      string   `json:"author"`
	Source      string   `json:"source"`
	CoverImage  string   `json:"cover_image"`
	MediaURL    string   `json:"media_url"`
}

type ResourceSummary struct {
	ID          uint     `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Author      string   `json:"author"`
	CoverImage  string   `json:"cover_image"`
	ViewCount   int      `json:"view_count"`
	LikeCount   int      `json:"like_count"`
	CreatedAt   string   `json:"created_at"`
}

type ResourceDetail struct {
	ResourceSummary
	Content   string `json:"content"`
	Source    string `json:"source"`
	MediaURL  string `json:"media_url"`
	UpdatedAt string `json:"updated_at"`
}
