package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups the repositories bound to one database handle, either
// the pool or an open transaction.
type Repositories interface {
	Comments() CommentRepository
	Posts() PostRepository
	Notifications() NotificationRepository
	Users() UserRepository
	RefreshTokens() RefreshTokenRepository
	Recommendations() RecommendationRepository
}

// Store is the unit of work used by the services. Repositories returned by
// the Store itself run outside any transaction; the ones handed to the
// WithinTx callback share a single transaction that commits when the
// callback returns nil and rolls back otherwise.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(tx Repositories) error) error
	Ping(ctx context.Context) error
}

type gormRepositories struct {
	db *gorm.DB
}

func (r gormRepositories) Comments() CommentRepository { return NewCommentRepository(r.db) }
func (r gormRepositories) Posts() PostRepository       { return NewPostRepository(r.db) }
func (r gormRepositories) Notifications() NotificationRepository {
	return NewNotificationRepository(r.db)
}
func (r gormRepositories) Users() UserRepository { return NewUserRepository(r.db) }
func (r gormRepositories) RefreshTokens() RefreshTokenRepository {
	return NewRefreshTokenRepository(r.db)
}
func (r gormRepositories) Recommendations() RecommendationRepository {
	return NewRecommendationRepository(r.db)
}

type gormStore struct {
	gormRepositories
}

// NewStore wraps a GORM connection as a Store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{gormRepositories{db: db}}
}

func (s *gormStore) WithinTx(ctx context.Context, fn func(tx Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormRepositories{db: tx})
	})
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
