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

type SubscriptionService interface {
	Subscribe(ctx context.Context, userID uuid.UUID, req dto.SubscribeRequest) (*dto.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, userID uuid.UUID, req dto.UnsubscribeRequest) error
	ListMine(ctx context.Context, userID uuid.UUID) ([]dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	subRepo      repository.SubscriptionRepository
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
}

func NewSubscriptionService(subRepo repository.SubscriptionRepository, userRepo repository.UserRepository, categoryRepo repository.CategoryRepository) SubscriptionService {
	return &subscriptionService{
		subRepo:      subRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID uuid.UUID, req dto.SubscribeRequest) (*dto.SubscriptionResponse, error) {
	if (req.AuthorID == "") == (req.CategoryID == "") {
		return nil, fmt.Errorf("%w: provide exactly one of author_id or category_id", apperror.ErrValidation)
	}

	sub := &model.Subscription{UserID: userID}

	if req.AuthorID != "" {
		authorID, err := uuid.Parse(req.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid author id", apperror.ErrValidation)
		}

		if authorID == userID {
			return nil, fmt.Errorf("%w: you cannot subscribe to yourself", apperror.ErrValidation)
		}

		if _, err := s.userRepo.FindByID(ctx, authorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: author", apperror.ErrNotFound)
			}
			return nil, err
		}

		if _, err := s.subRepo.FindByUserAndAuthor(ctx, userID, authorID); err == nil {
			return nil, fmt.Errorf("%w: already subscribed to this author", apperror.ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		sub.AuthorID = &authorID
	} else {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid category id", apperror.ErrValidation)
		}

		if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: category", apperror.ErrNotFound)
			}
			return nil, err
		}

		if _, err := s.subRepo.FindByUserAndCategory(ctx, userID, categoryID); err == nil {
			return nil, fmt.Errorf("%w: already subscribed to this category", apperror.ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		sub.CategoryID = &categoryID
	}

	if err := s.subRepo.Create(ctx, sub); err != nil {
		// Unique index catches the race between check and create
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: already subscribed", apperror.ErrConflict)
		}
		return nil, err
	}

	resp := toSubscriptionResponse(*sub)
	return &resp, nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, userID uuid.UUID, req dto.UnsubscribeRequest) error {
	if (req.AuthorID == "") == (req.CategoryID == "") {
		return fmt.Errorf("%w: provide exactly one of author_id or category_id", apperror.ErrValidation)
	}

	var sub *model.Subscription
	var err error

	if req.AuthorID != "" {
		authorID, parseErr := uuid.Parse(req.AuthorID)
		if parseErr != nil {
			return fmt.Errorf("%w: invalid author id", apperror.ErrValidation)
		}
		sub, err = s.subRepo.FindByUserAndAuthor(ctx, userID, authorID)
	} else {
		categoryID, parseErr := uuid.Parse(req.CategoryID)
		if parseErr != nil {
			return fmt.Errorf("%w: invalid category id", apperror.ErrValidation)
		}
		sub, err = s.subRepo.FindByUserAndCategory(ctx, userID, categoryID)
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: subscription", apperror.ErrNotFound)
		}
		return err
	}

	return s.subRepo.Delete(ctx, sub.ID)
}

func (s *subscriptionService) ListMine(ctx context.Context, userID uuid.UUID) ([]dto.SubscriptionResponse, error) {
	subs, err := s.subRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toSubscriptionResponse(sub))
	}

	return out, nil
}

func toSubscriptionResponse(sub model.Subscription) dto.SubscriptionResponse {
	resp := dto.SubscriptionResponse{
		ID:         sub.ID,
		AuthorID:   sub.AuthorID,
		CategoryID: sub.CategoryID,
		CreatedAt:  sub.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	if sub.Author != nil {
		resp.AuthorName = &sub.Author.Username
	}
	if sub.Category != nil {
		resp.CategoryName = &sub.Category.Name
	}

	return resp
}
