package repository

import (
	"context"

	"blogora/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LikeRepository interface {
	// Create returns gorm.ErrDuplicatedKey when the (post,user) pair already
	// holds a like.
	Create(ctx context.Context, like *model.Like) error
	Delete(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	Exists(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	Count(ctx context.Context, postID uuid.UUID) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Create(ctx context.Context, like *model.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *likeRepository) Delete(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&model.Like{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *likeRepository) Exists(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *likeRepository) Count(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
