package model

import (
	"time"

	"github.com/google/uuid"
)

// Rating holds one 1-5 star vote per (post,user). Re-rating updates in place.
type Rating struct {
	PostID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"post_id"`
	Post      Post      `gorm:"constraint:OnDelete:CASCADE" json:"post,omitempty"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Like is presence-only; the composite key enforces one like per (post,user).
type Like struct {
	PostID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"post_id"`
	Post      Post      `gorm:"constraint:OnDelete:CASCADE" json:"post,omitempty"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
