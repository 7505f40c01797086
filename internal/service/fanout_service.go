package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"blogora/internal/model"
	"blogora/internal/repository"
	"blogora/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FanoutResult sums up one notification run. Failures are per recipient; a
// failed delivery never blocks the rest of the batch.
type FanoutResult struct {
	Recipients int             `json:"recipients"`
	Delivered  int             `json:"delivered"`
	Failed     []FanoutFailure `json:"failed,omitempty"`
}

type FanoutFailure struct {
	Recipient uuid.UUID `json:"recipient"`
	Reason    string    `json:"reason"`
}

type FanoutService interface {
	// ResolveRecipients computes who gets notified for the post: everyone
	// subscribed to its author or its category, minus the author. Pure read,
	// no delivery.
	ResolveRecipients(ctx context.Context, post *model.Post) ([]uuid.UUID, error)
	// NotifyPostPublished resolves recipients and delivers one notification
	// each, collecting per-recipient failures.
	NotifyPostPublished(ctx context.Context, postID uuid.UUID) (*FanoutResult, error)
	// SharePost sends a single post notification to the user owning the
	// given email address.
	SharePost(ctx context.Context, userID, postID uuid.UUID, recipientEmail string) error
}

type fanoutService struct {
	postRepo repository.PostRepository
	subRepo  repository.SubscriptionRepository
	userRepo repository.UserRepository
	notifier Notifier
}

func NewFanoutService(postRepo repository.PostRepository, subRepo repository.SubscriptionRepository, userRepo repository.UserRepository, notifier Notifier) FanoutService {
	return &fanoutService{
		postRepo: postRepo,
		subRepo:  subRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

func (s *fanoutService) ResolveRecipients(ctx context.Context, post *model.Post) ([]uuid.UUID, error) {
	subs, err := s.subRepo.FindForPost(ctx, post.AuthorID, post.CategoryID)
	if err != nil {
		return nil, err
	}

	// A user subscribed to both the author and the category gets one
	// notification, not two.
	seen := make(map[uuid.UUID]bool, len(subs))
	recipients := make([]uuid.UUID, 0, len(subs))
	for _, sub := range subs {
		if seen[sub.UserID] {
			continue
		}
		seen[sub.UserID] = true
		recipients = append(recipients, sub.UserID)
	}

	return recipients, nil
}

func (s *fanoutService) NotifyPostPublished(ctx context.Context, postID uuid.UUID) (*FanoutResult, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post", apperror.ErrNotFound)
		}
		return nil, err
	}

	if post.Status != model.PostStatusPublished {
		return nil, fmt.Errorf("%w: only published posts can be announced", apperror.ErrValidation)
	}

	recipients, err := s.ResolveRecipients(ctx, post)
	if err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("New post from %s", post.Author.Username)
	body := fmt.Sprintf("%s published a new post: %q", post.Author.Username, post.Title)

	result := &FanoutResult{Recipients: len(recipients)}
	for _, recipient := range recipients {
		if err := s.notifier.Send(ctx, recipient, subject, body); err != nil {
			log.Printf("fanout: delivery to %s failed: %v", recipient, err)
			result.Failed = append(result.Failed, FanoutFailure{
				Recipient: recipient,
				Reason:    err.Error(),
			})
			continue
		}
		result.Delivered++
	}

	return result, nil
}

func (s *fanoutService) SharePost(ctx context.Context, userID, postID uuid.UUID, recipientEmail string) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: post", apperror.ErrNotFound)
		}
		return err
	}

	sender, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	recipient, err := s.userRepo.FindByEmail(ctx, recipientEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no user with that email", apperror.ErrNotFound)
		}
		return err
	}

	subject := fmt.Sprintf("Check out this post: %s", post.Title)

	preview := post.Content
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	body := fmt.Sprintf("%s shared a post with you:\n\n%s\n\n%s", sender.Username, post.Title, preview)

	return s.notifier.Send(ctx, recipient.ID, subject, body)
}
