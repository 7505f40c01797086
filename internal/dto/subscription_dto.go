package dto

import "github.com/google/uuid"

// SubscribeRequest must carry exactly one of AuthorID or CategoryID.
type SubscribeRequest struct {
	AuthorID   string `json:"author_id"`
	CategoryID string `json:"category_id"`
}

type UnsubscribeRequest struct {
	AuthorID   string `json:"author_id"`
	CategoryID string `json:"category_id"`
}

type SubscriptionResponse struct {
	ID           uuid.UUID  `json:"id"`
	AuthorID     *uuid.UUID `json:"author_id,omitempty"`
	AuthorName   *string    `json:"author_name,omitempty"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	CategoryName *string    `json:"category_name,omitempty"`
	CreatedAt    string     `json:"created_at"`
}
