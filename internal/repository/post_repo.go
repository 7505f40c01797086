package repository

import (
	"context"
	"math"

	"blogora/internal/dto"
	"blogora/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	ReplaceTags(ctx context.Context, post *model.Post, tags []model.Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListPublished(ctx context.Context, filter dto.PostFilter) ([]model.Post, *dto.PaginationMeta, error)
	ListDraftsByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Post, error)
	TopRated(ctx context.Context, limit int) ([]model.Post, error)
	TopLiked(ctx context.Context, limit int) ([]model.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Where("id = ?", id).
		First(&post).Error; err != nil {
		return nil, err
	}

	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Omit("Tags", "Author", "Category").Save(post).Error
}

func (r *postRepository) ReplaceTags(ctx context.Context, post *model.Post, tags []model.Tag) error {
	return r.db.WithContext(ctx).Model(post).Association("Tags").Replace(tags)
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Comments, ratings and likes go with the post through FK cascades;
	// the tag join rows are cleared here.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post := model.Post{ID: id}
		if err := tx.Model(&post).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}

func (r *postRepository) ListPublished(ctx context.Context, filter dto.PostFilter) ([]model.Post, *dto.PaginationMeta, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("posts.status = ?", model.PostStatusPublished)

	if filter.CategoryID != "" {
		query = query.Where("posts.category_id = ?", filter.CategoryID)
	}
	if filter.AuthorID != "" {
		query = query.Where("posts.author_id = ?", filter.AuthorID)
	}
	if filter.Tag != "" {
		query = query.
			Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name = ?", filter.Tag)
	}

	var total int64
	if err := query.Distinct("posts.id").Count(&total).Error; err != nil {
		return nil, nil, err
	}

	offset := (filter.Page - 1) * filter.Limit

	var posts []model.Post
	if err := query.
		Distinct("posts.*").
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Order("posts.published_date DESC").
		Limit(filter.Limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, nil, err
	}

	meta := &dto.PaginationMeta{
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}

	return posts, meta, nil
}

func (r *postRepository) ListDraftsByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Tags").
		Where("author_id = ? AND status = ?", authorID, model.PostStatusDraft).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) TopRated(ctx context.Context, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Select("posts.*, COALESCE(AVG(ratings.value), 0) AS avg_rating").
		Joins("LEFT JOIN ratings ON ratings.post_id = posts.id").
		Where("posts.status = ?", model.PostStatusPublished).
		Group("posts.id").
		Order("avg_rating DESC").
		Limit(limit).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) TopLiked(ctx context.Context, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Select("posts.*, COUNT(likes.user_id) AS like_count").
		Joins("LEFT JOIN likes ON likes.post_id = posts.id").
		Where("posts.status = ?", model.PostStatusPublished).
		Group("posts.id").
		Order("like_count DESC").
		Limit(limit).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Find(&posts).Error
	return posts, err
}
