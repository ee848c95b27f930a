package service

import (
	"context"

	"dtalks/internal/microservices/http-api/models"
	"dtalks/internal/microservices/http-api/repository"
	"dtalks/internal/notify"
)

// outbox collects the notification rows written inside a transaction so they
// can be pushed once the transaction has committed.
type outbox []models.Notification

func (o *outbox) record(ctx context.Context, repo repository.NotificationRepository, n *models.Notification) error {
	if err := repo.Create(ctx, n); err != nil {
		return err
	}
	*o = append(*o, *n)
	return nil
}

func (o outbox) flush(ctx context.Context, emitter notify.Emitter) {
	for i := range o {
		emitter.Emit(ctx, toEvent(&o[i]))
	}
}

func toEvent(n *models.Notification) notify.Event {
	return notify.Event{
		NotificationID: n.ID,
		ReceiverID:     n.ReceiverID,
		Type:           string(n.Type),
		RefID:          n.RefID,
		PostID:         n.PostID,
		Message:        n.Message,
		CreatedAt:      n.CreatedAt,
	}
}
