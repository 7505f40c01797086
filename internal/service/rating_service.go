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

type RatingService interface {
	// RatePost upserts the caller's 1-5 rating; re-rating overwrites.
	RatePost(ctx context.Context, userID, postID uuid.UUID, value int) error
	// GetSummary reports the fresh average (nil when unrated) and vote count.
	GetSummary(ctx context.Context, postID uuid.UUID) (*dto.RatingSummary, error)
}

type ratingService struct {
	ratingRepo repository.RatingRepository
	postRepo   repository.PostRepository
}

func NewRatingService(ratingRepo repository.RatingRepository, postRepo repository.PostRepository) RatingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		postRepo:   postRepo,
	}
}

func (s *ratingService) RatePost(ctx context.Context, userID, postID uuid.UUID, value int) error {
	if value < 1 || value > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", apperror.ErrValidation)
	}

	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: post", apperror.ErrNotFound)
		}
		return err
	}

	rating := &model.Rating{
		PostID: postID,
		UserID: userID,
		Value:  value,
	}

	return s.ratingRepo.Upsert(ctx, rating)
}

func (s *ratingService) GetSummary(ctx context.Context, postID uuid.UUID) (*dto.RatingSummary, error) {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post", apperror.ErrNotFound)
		}
		return nil, err
	}

	avg, err := s.ratingRepo.Average(ctx, postID)
	if err != nil {
		return nil, err
	}

	count, err := s.ratingRepo.Count(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &dto.RatingSummary{AverageRating: avg, Count: count}, nil
}
