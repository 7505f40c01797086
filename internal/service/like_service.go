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

type LikeService interface {
	// LikePost creates the like once; a second call for the same pair is a
	// Conflict, not a toggle.
	LikePost(ctx context.Context, userID, postID uuid.UUID) error
	UnlikePost(ctx context.Context, userID, postID uuid.UUID) error
	GetSummary(ctx context.Context, postID, userID uuid.UUID) (*dto.LikeSummary, error)
}

type likeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
}

func NewLikeService(likeRepo repository.LikeRepository, postRepo repository.PostRepository) LikeService {
	return &likeService{
		likeRepo: likeRepo,
		postRepo: postRepo,
	}
}

func (s *likeService) LikePost(ctx context.Context, userID, postID uuid.UUID) error {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: post", apperror.ErrNotFound)
		}
		return err
	}

	like := &model.Like{
		PostID: postID,
		UserID: userID,
	}

	// The composite key settles concurrent duplicates; the row is written
	// once and the loser gets the conflict.
	if err := s.likeRepo.Create(ctx, like); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: you already liked this post", apperror.ErrConflict)
		}
		return err
	}

	return nil
}

func (s *likeService) UnlikePost(ctx context.Context, userID, postID uuid.UUID) error {
	deleted, err := s.likeRepo.Delete(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: like", apperror.ErrNotFound)
	}
	return nil
}

func (s *likeService) GetSummary(ctx context.Context, postID, userID uuid.UUID) (*dto.LikeSummary, error) {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post", apperror.ErrNotFound)
		}
		return nil, err
	}

	count, err := s.likeRepo.Count(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked := false
	if userID != uuid.Nil {
		liked, err = s.likeRepo.Exists(ctx, postID, userID)
		if err != nil {
			return nil, err
		}
	}

	return &dto.LikeSummary{LikeCount: count, Liked: liked}, nil
}
