package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dtalks/internal/microservices/http-api/dto"
	"dtalks/internal/microservices/http-api/models"
	"dtalks/internal/microservices/http-api/repository"
	"dtalks/internal/notify"
)

var (
	ErrAlreadyRecommended = fmt.Errorf("%w: post already recommended", ErrConflict)
	ErrNotRecommended     = fmt.Errorf("recommendation %w", ErrNotFound)
)

// RecommendService handles likes on posts.
type RecommendService interface {
	Recommend(ctx context.Context, postID int64, userID string) (*dto.RecommendResponse, error)
	Cancel(ctx context.Context, postID int64, userID string) (*dto.RecommendResponse, error)
}

type recommendService struct {
	store   repository.Store
	emitter notify.Emitter
	logger  *slog.Logger
}

func NewRecommendService(store repository.Store, emitter notify.Emitter, logger *slog.Logger) RecommendService {
	if emitter == nil {
		emitter = notify.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &recommendService{store: store, emitter: emitter, logger: logger}
}

func (s *recommendService) Recommend(ctx context.Context, postID int64, userID string) (*dto.RecommendResponse, error) {
	var (
		resp *dto.RecommendResponse
		out  outbox
	)
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		post, err := tx.Posts().FindByID(ctx, postID)
		if err != nil {
			return notFound(err, ErrPostNotFound)
		}
		liker, err := activeAuthor(ctx, tx, userID)
		if err != nil {
			return err
		}

		rec := &models.PostRecommendation{UserID: userID, PostID: postID}
		err = tx.Recommendations().Create(ctx, rec)
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyRecommended
		}
		if err != nil {
			return err
		}
		if err := tx.Posts().IncrementLikeCount(ctx, postID); err != nil {
			return err
		}

		if post.UserID != userID && post.User.IsActive {
			err := out.record(ctx, tx.Notifications(), &models.Notification{
				ReceiverID: post.UserID,
				RefID:      &rec.ID,
				Type:       models.NotificationRecommendPost,
				PostID:     &post.ID,
				Message:    fmt.Sprintf("%s recommended your post %q", liker.Nickname, post.Title),
				ReadStatus: models.ReadStatusUnread,
			})
			if err != nil {
				return err
			}
		}

		resp, err = likeCount(ctx, tx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}

	out.flush(ctx, s.emitter)
	s.logger.Info("post_recommended", "post_id", postID, "user_id", userID)
	return resp, nil
}

func (s *recommendService) Cancel(ctx context.Context, postID int64, userID string) (*dto.RecommendResponse, error) {
	var resp *dto.RecommendResponse
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		rec, err := tx.Recommendations().Find(ctx, userID, postID)
		if err != nil {
			return notFound(err, ErrNotRecommended)
		}
		if err := tx.Recommendations().Delete(ctx, rec.ID); err != nil {
			return notFound(err, ErrNotRecommended)
		}
		if err := tx.Posts().DecrementLikeCount(ctx, postID); err != nil {
			return notFound(err, ErrPostNotFound)
		}
		if err := releaseNotification(ctx, tx.Notifications(), rec.ID, models.NotificationRecommendPost); err != nil {
			return err
		}
		resp, err = likeCount(ctx, tx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("post_recommend_canceled", "post_id", postID, "user_id", userID)
	return resp, nil
}

// likeCount re-reads the counter after the in-place update.
func likeCount(ctx context.Context, tx repository.Repositories, postID int64) (*dto.RecommendResponse, error) {
	post, err := tx.Posts().FindByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	return &dto.RecommendResponse{PostID: postID, LikeCount: post.LikeCount}, nil
}
