package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"dtalks/internal/microservices/http-api/models"
	"dtalks/internal/microservices/http-api/repository/memory"
	"dtalks/internal/notify"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []notify.Event
}

func (e *recordingEmitter) Emit(_ context.Context, event notify.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *recordingEmitter) list() []notify.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]notify.Event(nil), e.events...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// tickingClock advances one second per call so creation order is total.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore() *memory.Store {
	return memory.NewWithClock(tickingClock())
}

func mustUser(store *memory.Store, name string, active bool) *models.User {
	u := &models.User{
		Username: name,
		Nickname: name,
		Email:    name + "@example.com",
		Password: "x",
		Role:     models.RoleUser,
		IsActive: active,
	}
	if err := store.Users().Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func mustPost(store *memory.Store, author *models.User, title string) *models.Post {
	p := &models.Post{UserID: author.ID, Title: title, Content: "body of " + title}
	if err := store.Posts().Create(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}
