package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription targets exactly one of AuthorID or CategoryID. The invariant is
// enforced in the service layer; the unique indexes block duplicate pairs.
type Subscription struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_sub_author;uniqueIndex:idx_sub_category" json:"user_id"`
	User       User       `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	AuthorID   *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_sub_author" json:"author_id,omitempty"`
	Author     *User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	CategoryID *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_sub_category" json:"category_id,omitempty"`
	Category   *Category  `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
