package dto

type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type AuthorResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
