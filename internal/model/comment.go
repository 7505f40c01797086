package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment forms a tree through ParentID. A parent can only be assigned at
// creation time against an already existing comment of the same post, which
// makes cycles structurally impossible.
type Comment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"post_id"`
	Post      Post       `gorm:"constraint:OnDelete:CASCADE" json:"post,omitempty"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	User      User       `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	ParentID  *uuid.UUID `gorm:"type:uuid" json:"parent_id,omitempty"`
	Parent    *Comment   `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"parent,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;<-:create" json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		// v7 keeps IDs ordered by creation, a stable tiebreak for equal timestamps
		c.ID, err = uuid.NewV7()
	}
	return
}
