package notify

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const publishTimeout = 3 * time.Second

// Dispatcher queues events and publishes them from a single background worker.
type Dispatcher struct {
	broker Broker
	queue  chan Event
	done   chan struct{}
	logger *slog.Logger
	closed atomic.Bool

	published atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

var _ Emitter = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher with a queue of size events. Call Run to
// start delivering.
func NewDispatcher(broker Broker, size int, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if size < 1 {
		size = 1
	}
	return &Dispatcher{
		broker: broker,
		queue:  make(chan Event, size),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Emit enqueues the event or drops it when the queue is full.
func (d *Dispatcher) Emit(_ context.Context, event Event) {
	if d.closed.Load() {
		d.dropped.Add(1)
		d.logger.Warn("notify_dispatcher_closed_event_dropped",
			"receiver_id", event.ReceiverID,
			"notification_id", event.NotificationID,
		)
		return
	}

	if depth := len(d.queue); depth > cap(d.queue)/2 {
		d.logger.Warn("notify_queue_high_watermark", "queue_depth", depth)
	}

	select {
	case d.queue <- event:
	default:
		// the row is already stored, the client sees it on the next list call
		d.dropped.Add(1)
		d.logger.Warn("notify_queue_full_event_dropped",
			"receiver_id", event.ReceiverID,
			"notification_id", event.NotificationID,
		)
	}
}

// Run delivers events until ctx is done, then drains what is already queued.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	d.logger.Info("notify_dispatcher_started", "queue_size", cap(d.queue))

	for {
		select {
		case <-ctx.Done():
			d.closed.Store(true)
			d.drain()
			d.logger.Info("notify_dispatcher_stopped",
				"published", d.published.Load(),
				"dropped", d.dropped.Load(),
				"failed", d.failed.Load(),
			)
			return
		case event := <-d.queue:
			d.publish(event)
		}
	}
}

// Wait blocks until Run has returned.
func (d *Dispatcher) Wait() {
	<-d.done
}

// Stats reports delivery counters.
func (d *Dispatcher) Stats() (published, dropped, failed int64) {
	return d.published.Load(), d.dropped.Load(), d.failed.Load()
}

func (d *Dispatcher) drain() {
	remaining := len(d.queue)
	if remaining > 0 {
		d.logger.Info("notify_dispatcher_draining", "remaining", remaining)
	}
	for {
		select {
		case event := <-d.queue:
			d.publish(event)
		default:
			return
		}
	}
}

func (d *Dispatcher) publish(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := d.broker.Publish(ctx, event); err != nil {
		d.failed.Add(1)
		d.logger.Error("notify_publish_failed",
			"receiver_id", event.ReceiverID,
			"notification_id", event.NotificationID,
			"error", err,
		)
		return
	}
	d.published.Add(1)
}
