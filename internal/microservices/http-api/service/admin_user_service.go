package service

import (
	"context"
	"fmt"
	"log/slog"

	"dtalks/internal/microservices/http-api/dto"
	"dtalks/internal/microservices/http-api/repository"
)

// AdminUserService backs the moderation endpoints.
type AdminUserService interface {
	ListUsers(ctx context.Context, page, pageSize int) (*dto.PageResponse[dto.UserResponse], error)
	// Suspend deactivates the account and revokes its refresh tokens.
	Suspend(ctx context.Context, adminID, userID string) error
	Unsuspend(ctx context.Context, adminID, userID string) error
}

type adminUserService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewAdminUserService(store repository.Store, logger *slog.Logger) AdminUserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &adminUserService{store: store, logger: logger}
}

func (s *adminUserService) ListUsers(ctx context.Context, page, pageSize int) (*dto.PageResponse[dto.UserResponse], error) {
	users, total, err := s.store.Users().List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	data := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		data = append(data, dto.FromModelToUserResponse(&users[i]))
	}
	return dto.NewPageResponse(data, int(total), page, pageSize), nil
}

func (s *adminUserService) Suspend(ctx context.Context, adminID, userID string) error {
	if adminID == userID {
		return fmt.Errorf("%w: cannot suspend your own account", ErrInvalid)
	}
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		if err := tx.Users().SetActive(ctx, userID, false); err != nil {
			return notFound(err, ErrUserNotFound)
		}
		return tx.RefreshTokens().RevokeAllForUser(ctx, userID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("user_suspended", "user_id", userID, "admin_id", adminID)
	return nil
}

func (s *adminUserService) Unsuspend(ctx context.Context, adminID, userID string) error {
	if err := s.store.Users().SetActive(ctx, userID, true); err != nil {
		return notFound(err, ErrUserNotFound)
	}

	s.logger.Info("user_unsuspended", "user_id", userID, "admin_id", adminID)
	return nil
}
