package dto

import "github.com/google/uuid"

type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID string `json:"parent_id"` // Optional, for nested replies
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// CommentResponse carries its replies recursively, newest first at every level.
type CommentResponse struct {
	ID        uuid.UUID         `json:"id"`
	PostID    uuid.UUID         `json:"post_id"`
	ParentID  *uuid.UUID        `json:"parent_id,omitempty"`
	Author    AuthorResponse    `json:"author"`
	Content   string            `json:"content"`
	CreatedAt string            `json:"created_at"`
	Replies   []CommentResponse `json:"replies"`
}
