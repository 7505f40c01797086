package repository

import (
	"context"
	"database/sql"

	"blogora/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository interface {
	// Upsert creates the rating or overwrites the value for an existing
	// (post,user) pair in a single statement, so concurrent writers resolve
	// to last write wins.
	Upsert(ctx context.Context, rating *model.Rating) error
	FindByPostAndUser(ctx context.Context, postID, userID uuid.UUID) (*model.Rating, error)
	// Average returns nil when the post has no ratings.
	Average(ctx context.Context, postID uuid.UUID) (*float64, error)
	Count(ctx context.Context, postID uuid.UUID) (int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Upsert(ctx context.Context, rating *model.Rating) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(rating).Error
}

func (r *ratingRepository) FindByPostAndUser(ctx context.Context, postID, userID uuid.UUID) (*model.Rating, error) {
	var rating model.Rating
	if err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&rating).Error; err != nil {
		return nil, err
	}

	return &rating, nil
}

func (r *ratingRepository) Average(ctx context.Context, postID uuid.UUID) (*float64, error) {
	var avg sql.NullFloat64
	err := r.db.WithContext(ctx).
		Model(&model.Rating{}).
		Where("post_id = ?", postID).
		Select("AVG(value)").
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}

	if !avg.Valid {
		return nil, nil
	}

	return &avg.Float64, nil
}

func (r *ratingRepository) Count(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Rating{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
