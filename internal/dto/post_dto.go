package dto

type CreatePostRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category" binding:"required,max=50"`
}

type UpdatePostRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

type PostSummary struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Summary      string     `json:"summary,omitempty"`
	Content      string     `json:"content,omitempty"`
	Author       AuthorInfo `json:"author"`
	Category     string     `json:"category"`
	ViewCount    int        `json:"view_count"`
	LikeCount    int        `json:"like_count"`
	CommentCount int        `json:"comment_count"`
	CreatedAt    string     `json:"created_at"`
}

type PostDetail struct {
	ID                 uint            `json:"id"`
	Title              string          `json:"title"`
	Content            string          `json:"content"`
	Author             PostAuthor      `json:"author"`
	Category           string          `json:"category"`
	ViewCount          int             `json:"view_count"`
	LikeCount          int             `json:"like_count"`
	CommentCount       int             `json:"comment_count"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
	LikedByCurrentUser bool            `json:"liked_by_current_user"`
	Comments           []CommentDetail `json:"comments"`
}

type PostAuthor struct {
	ID       *uint  `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Bio      string `json:"bio,omitempty"`
}

type ToggleLikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

type CommentDetail struct {
	ID        uint            `json:"id"`
	Content   string          `json:"content"`
	Author    AuthorInfo      `json:"author"`
	Replies   []CommentDetail `json:"replies,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}
