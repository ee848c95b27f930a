// Package notify delivers committed notifications to connected clients.
//
// Notification rows are written by the services inside their transaction;
// this package only pushes a copy of each row after commit. Delivery is best
// effort: a full queue or an unreachable broker never fails the write that
// produced the event.
package notify

import (
	"context"
	"time"
)

type Event struct {
	NotificationID int64     `json:"notification_id"`
	ReceiverID     string    `json:"receiver_id"`
	Type           string    `json:"type"`
	RefID          *int64    `json:"ref_id,omitempty"`
	PostID         *int64    `json:"post_id,omitempty"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// Emitter accepts events for asynchronous delivery. Emit must not block.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// Broker moves events from the API process to subscribed clients.
type Broker interface {
	Publish(ctx context.Context, event Event) error
	// Subscribe streams the receiver's events until ctx is done.
	Subscribe(ctx context.Context, receiverID string) (<-chan Event, error)
}

// NopEmitter discards every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, Event) {}

// Channel is the pub/sub channel carrying a receiver's events.
func Channel(receiverID string) string {
	return "notifications:" + receiverID
}
