package repository

import (
	"context"

	"blogora/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *model.Subscription) error
	FindByUserAndAuthor(ctx context.Context, userID, authorID uuid.UUID) (*model.Subscription, error)
	FindByUserAndCategory(ctx context.Context, userID, categoryID uuid.UUID) (*model.Subscription, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Subscription, error)
	// FindForPost returns subscriptions matching the post's author or
	// category, excluding the author's own subscriptions.
	FindForPost(ctx context.Context, authorID uuid.UUID, categoryID *uuid.UUID) ([]model.Subscription, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepository) FindByUserAndAuthor(ctx context.Context, userID, authorID uuid.UUID) (*model.Subscription, error) {
	var sub model.Subscription
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		First(&sub).Error; err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepository) FindByUserAndCategory(ctx context.Context, userID, categoryID uuid.UUID) (*model.Subscription, error) {
	var sub model.Subscription
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		First(&sub).Error; err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) FindForPost(ctx context.Context, authorID uuid.UUID, categoryID *uuid.UUID) ([]model.Subscription, error) {
	query := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id <> ?", authorID)

	if categoryID != nil {
		query = query.Where("author_id = ? OR category_id = ?", authorID, *categoryID)
	} else {
		query = query.Where("author_id = ?", authorID)
	}

	var subs []model.Subscription
	err := query.Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Subscription{}, "id = ?", id).Error
}
