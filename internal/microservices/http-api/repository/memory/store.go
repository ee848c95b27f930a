// Package memory is an in-process implementation of repository.Store used by
// the service tests and by `serve --store=memory`.
//
// A transaction holds the store mutex from start to finish, so transactions
// are fully serialised. On error the dataset is restored from a snapshot taken
// when the transaction began.
package memory

import (
	"context"
	"sync"
	"time"

	"dtalks/internal/microservices/http-api/repository"
)

type Store struct {
	mu   sync.Mutex
	data *dataset
	now  func() time.Time
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{data: newDataset(), now: time.Now}
}

// NewWithClock returns an empty store stamping rows with now.
func NewWithClock(now func() time.Time) *Store {
	return &Store{data: newDataset(), now: now}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(repos{s: s, inTx: true}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Comments() repository.CommentRepository {
	return repos{s: s}.Comments()
}

func (s *Store) Posts() repository.PostRepository {
	return repos{s: s}.Posts()
}

func (s *Store) Notifications() repository.NotificationRepository {
	return repos{s: s}.Notifications()
}

func (s *Store) Users() repository.UserRepository {
	return repos{s: s}.Users()
}

func (s *Store) RefreshTokens() repository.RefreshTokenRepository {
	return repos{s: s}.RefreshTokens()
}

func (s *Store) Recommendations() repository.RecommendationRepository {
	return repos{s: s}.Recommendations()
}

// repos binds the repositories to the store. Outside a transaction every call
// takes the mutex itself; inside one the mutex is already held.
type repos struct {
	s    *Store
	inTx bool
}

func (r repos) Comments() repository.CommentRepository               { return commentRepo{r} }
func (r repos) Posts() repository.PostRepository                     { return postRepo{r} }
func (r repos) Notifications() repository.NotificationRepository     { return notificationRepo{r} }
func (r repos) Users() repository.UserRepository                     { return userRepo{r} }
func (r repos) RefreshTokens() repository.RefreshTokenRepository     { return refreshTokenRepo{r} }
func (r repos) Recommendations() repository.RecommendationRepository { return recommendationRepo{r} }

func (r repos) do(ctx context.Context, fn func(d *dataset) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.inTx {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	return fn(r.s.data)
}
