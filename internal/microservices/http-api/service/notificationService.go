package service

import (
	"context"
	"errors"

	"dtalks/internal/microservices/http-api/dto"
	"dtalks/internal/microservices/http-api/models"
	"dtalks/internal/microservices/http-api/repository"
	"dtalks/internal/notify"
)

var ErrStreamUnavailable = errors.New("notification stream unavailable")

type NotificationService interface {
	List(ctx context.Context, userID string, page, pageSize int) (*dto.PageResponse[dto.NotificationResponse], error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, userID string, notificationID int64) error
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID string, notificationID int64) error
	// Subscribe streams the user's new notifications until ctx is done.
	Subscribe(ctx context.Context, userID string) (<-chan notify.Event, error)
}

type notificationService struct {
	store  repository.Store
	broker notify.Broker
}

// NewNotificationService takes a nil broker when push delivery is disabled.
func NewNotificationService(store repository.Store, broker notify.Broker) NotificationService {
	return &notificationService{store: store, broker: broker}
}

func (s *notificationService) List(ctx context.Context, userID string, page, pageSize int) (*dto.PageResponse[dto.NotificationResponse], error) {
	rows, total, err := s.store.Notifications().ListByReceiver(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	data := make([]dto.NotificationResponse, 0, len(rows))
	for i := range rows {
		data = append(data, dto.FromModelToNotificationResponse(&rows[i]))
	}
	return dto.NewPageResponse(data, int(total), page, pageSize), nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.store.Notifications().CountUnread(ctx, userID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID string, notificationID int64) error {
	return s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		if _, err := owned(ctx, tx.Notifications(), userID, notificationID); err != nil {
			return err
		}
		return tx.Notifications().MarkAsRead(ctx, notificationID)
	})
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	return s.store.Notifications().MarkAllAsRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, userID string, notificationID int64) error {
	return s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		if _, err := owned(ctx, tx.Notifications(), userID, notificationID); err != nil {
			return err
		}
		return notFound(tx.Notifications().Delete(ctx, notificationID), ErrNotificationNotFound)
	})
}

func (s *notificationService) Subscribe(ctx context.Context, userID string) (<-chan notify.Event, error) {
	if s.broker == nil {
		return nil, ErrStreamUnavailable
	}
	return s.broker.Subscribe(ctx, userID)
}

// owned hides other users' notifications behind not-found.
func owned(ctx context.Context, repo repository.NotificationRepository, userID string, notificationID int64) (*models.Notification, error) {
	n, err := repo.FindByID(ctx, notificationID)
	if err != nil {
		return nil, notFound(err, ErrNotificationNotFound)
	}
	if n.ReceiverID != userID {
		return nil, ErrNotificationNotFound
	}
	return n, nil
}
