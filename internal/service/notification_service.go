package service

import (
	"context"
	"encoding/json"
	"fmt"

	"blogora/internal/model"
	"blogora/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Notifier is the delivery contract used by fan-out and share: one message to
// one recipient, success or failure per message.
type Notifier interface {
	Send(ctx context.Context, recipient uuid.UUID, subject, body string) error
}

type NotificationService interface {
	Notifier
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        repository.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

// Send stores the notification and, when Redis is configured, publishes it on
// the recipient's channel so open websocket streams pick it up live.
func (s *notificationService) Send(ctx context.Context, recipient uuid.UUID, subject, body string) error {
	notification := &model.Notification{
		UserID:  recipient,
		Subject: subject,
		Body:    body,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient != nil {
		channel := fmt.Sprintf("user_notifications:%s", recipient.String())

		payload, err := json.Marshal(notification)
		if err == nil {
			s.redisClient.Publish(ctx, channel, payload)
		}
	}

	return nil
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
