package dto

import "github.com/google/uuid"

type CreatePostRequest struct {
	Title      string   `json:"title" binding:"required,max=255"`
	Content    string   `json:"content" binding:"required"`
	CategoryID string   `json:"category_id"`
	TagIDs     []string `json:"tag_ids"`
	Status     string   `json:"status" binding:"omitempty,oneof=draft published"`
}

type UpdatePostRequest struct {
	Title      *string  `json:"title" binding:"omitempty,max=255"`
	Content    *string  `json:"content"`
	CategoryID *string  `json:"category_id"`
	TagIDs     []string `json:"tag_ids"`
	Status     *string  `json:"status" binding:"omitempty,oneof=draft published"`
}

type PostResponse struct {
	ID            uuid.UUID      `json:"id"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	Author        AuthorResponse `json:"author"`
	CategoryID    *uuid.UUID     `json:"category_id,omitempty"`
	CategoryName  *string        `json:"category_name,omitempty"`
	Tags          []string       `json:"tags"`
	Status        string         `json:"status"`
	AverageRating *float64       `json:"average_rating"` // null when the post has no ratings
	LikeCount     int64          `json:"like_count"`
	PublishedDate string         `json:"published_date"`
	CreatedAt     string         `json:"created_at"`
}

type PostFilter struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	CategoryID string `form:"category_id"`
	AuthorID   string `form:"author_id"`
	Tag        string `form:"tag"`
}

type PaginatedPostResponse struct {
	Data []PostResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

type SharePostRequest struct {
	RecipientEmail string `json:"recipient_email" binding:"required,email"`
}

type SearchPostsRequest struct {
	Query      string `form:"q" binding:"required"`
	CategoryID string `form:"category_id"`
	Limit      int    `form:"limit"`
}

// PostSearchHit mirrors the search index document.
type PostSearchHit struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	AuthorID       string   `json:"author_id"`
	AuthorUsername string   `json:"author_username"`
	CategoryID     string   `json:"category_id,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	PublishedDate  int64    `json:"published_date"`
}
