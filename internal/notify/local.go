package notify

import (
	"context"
	"sync"
)

// LocalBroker is an in-process Broker for single-instance deployments
// running without Redis. Slow subscribers miss events instead of stalling
// the dispatcher.
type LocalBroker struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[string]map[chan Event]struct{})}
}

func (b *LocalBroker) Publish(_ context.Context, event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[event.ReceiverID] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *LocalBroker) Subscribe(ctx context.Context, receiverID string) (<-chan Event, error) {
	ch := make(chan Event, 16)

	b.mu.Lock()
	if b.subs[receiverID] == nil {
		b.subs[receiverID] = make(map[chan Event]struct{})
	}
	b.subs[receiverID][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs[receiverID], ch)
		if len(b.subs[receiverID]) == 0 {
			delete(b.subs, receiverID)
		}
		b.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}
