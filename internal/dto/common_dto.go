package dto

// Pagination mirrors the list envelope's pagination block:
// pages == ceil(total/limit).
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}
}

type ListQuery struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Category string `form:"category"`
	Search   string `form:"search"`
	SortBy   string `form:"sortBy"`
}

// Normalize applies the shared paging defaults: page >= 1, limit 10 when
// unset, capped at 50.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 50 {
		q.Limit = 50
	}
}

func (q *ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type AuthorInfo struct {
	ID       *uint  `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}
