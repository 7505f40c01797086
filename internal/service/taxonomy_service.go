package service

import (
	"context"
	"errors"
	"fmt"

	"blogora/internal/dto"
	"blogora/internal/model"
	"blogora/internal/repository"
	"blogora/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaxonomyService manages the categories and tags posts are filed under.
type TaxonomyService interface {
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CreateTag(ctx context.Context, req dto.CreateTagRequest) (*model.Tag, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
}

type taxonomyService struct {
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
}

func NewTaxonomyService(categoryRepo repository.CategoryRepository, tagRepo repository.TagRepository) TaxonomyService {
	return &taxonomyService{
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
	}
}

func (s *taxonomyService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*model.Category, error) {
	category := &model.Category{
		Name:        req.Name,
		Description: req.Description,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: category %q already exists", apperror.ErrConflict, req.Name)
		}
		return nil, fmt.Errorf("%w: failed to create category: %v", apperror.ErrInternal, err)
	}

	return category, nil
}

func (s *taxonomyService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list categories: %v", apperror.ErrInternal, err)
	}
	return categories, nil
}

func (s *taxonomyService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category not found", apperror.ErrNotFound)
		}
		return fmt.Errorf("%w: failed to find category: %v", apperror.ErrInternal, err)
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: failed to delete category: %v", apperror.ErrInternal, err)
	}

	return nil
}

func (s *taxonomyService) CreateTag(ctx context.Context, req dto.CreateTagRequest) (*model.Tag, error) {
	tag := &model.Tag{Name: req.Name}

	if err := s.tagRepo.Create(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: tag %q already exists", apperror.ErrConflict, req.Name)
		}
		return nil, fmt.Errorf("%w: failed to create tag: %v", apperror.ErrInternal, err)
	}

	return tag, nil
}

func (s *taxonomyService) ListTags(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.tagRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list tags: %v", apperror.ErrInternal, err)
	}
	return tags, nil
}
