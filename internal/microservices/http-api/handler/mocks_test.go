package handler_test

import (
	"context"
	"time"

	"dtalks/internal/microservices/http-api/dto"
	"dtalks/internal/microservices/http-api/models"
	"dtalks/internal/microservices/http-api/service"
	"dtalks/internal/notify"

	"github.com/stretchr/testify/mock"
)

// --- MOCK SERVICES ---

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, string, *models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(2) == nil {
		return "", "", nil, args.Error(3)
	}
	return args.String(0), args.String(1), args.Get(2).(*models.User), args.Error(3)
}

func (m *MockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Revoke(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

// ValidateToken accepts "<role>:<user id>" tokens so tests need no signing key.
func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	for _, role := range []string{models.RoleUser, models.RoleAdmin} {
		prefix := role + ":"
		if len(tokenString) > len(prefix) && tokenString[:len(prefix)] == prefix {
			return &service.Claims{UserID: tokenString[len(prefix):], Role: role, Type: "access"}, nil
		}
	}
	return nil, service.ErrInvalidToken
}

func (m *MockAuthService) AccessTokenTTL() time.Duration {
	return 15 * time.Minute
}

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) Create(ctx context.Context, authorID string, req dto.CreatePostRequest) (int64, error) {
	args := m.Called(ctx, authorID, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostService) Update(ctx context.Context, postID int64, requesterID string, req dto.UpdatePostRequest) error {
	return m.Called(ctx, postID, requesterID, req).Error(0)
}

func (m *MockPostService) Delete(ctx context.Context, postID int64, requesterID string) error {
	return m.Called(ctx, postID, requesterID).Error(0)
}

func (m *MockPostService) View(ctx context.Context, postID int64, viewerID string) (*dto.PostResponse, error) {
	args := m.Called(ctx, postID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PostResponse), args.Error(1)
}

func (m *MockPostService) List(ctx context.Context, page, pageSize int) (*dto.PageResponse[dto.PostSummary], error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PageResponse[dto.PostSummary]), args.Error(1)
}

func (m *MockPostService) ListByUser(ctx context.Context, userID string, page, pageSize int) (*dto.PageResponse[dto.PostSummary], error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PageResponse[dto.PostSummary]), args.Error(1)
}

func (m *MockPostService) Search(ctx context.Context, keyword string, page, pageSize int) (*dto.PageResponse[dto.PostSummary], error) {
	args := m.Called(ctx, keyword, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PageResponse[dto.PostSummary]), args.Error(1)
}

func (m *MockPostService) Best(ctx context.Context) ([]dto.PostSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]dto.PostSummary), args.Error(1)
}

type MockRecommendService struct {
	mock.Mock
}

func (m *MockRecommendService) Recommend(ctx context.Context, postID int64, userID string) (*dto.RecommendResponse, error) {
	args := m.Called(ctx, postID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RecommendResponse), args.Error(1)
}

func (m *MockRecommendService) Cancel(ctx context.Context, postID int64, userID string) (*dto.RecommendResponse, error) {
	args := m.Called(ctx, postID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RecommendResponse), args.Error(1)
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) LoadThread(ctx context.Context, postID int64, viewerID string) ([]*dto.CommentView, error) {
	args := m.Called(ctx, postID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dto.CommentView), args.Error(1)
}

func (m *MockCommentService) CreateTopLevel(ctx context.Context, postID int64, authorID, content string, secret bool) (int64, error) {
	args := m.Called(ctx, postID, authorID, content, secret)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentService) CreateReply(ctx context.Context, postID, parentID int64, authorID, content string, secret bool) (int64, error) {
	args := m.Called(ctx, postID, parentID, authorID, content, secret)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentService) Update(ctx context.Context, commentID int64, requesterID, content string, secret bool) error {
	return m.Called(ctx, commentID, requesterID, content, secret).Error(0)
}

func (m *MockCommentService) Delete(ctx context.Context, commentID int64, requesterID string) error {
	return m.Called(ctx, commentID, requesterID).Error(0)
}

func (m *MockCommentService) Get(ctx context.Context, commentID int64, viewerID string) (*dto.CommentView, error) {
	args := m.Called(ctx, commentID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentView), args.Error(1)
}

func (m *MockCommentService) ListByNickname(ctx context.Context, nickname string, page, pageSize int) (*dto.PageResponse[dto.UserCommentResponse], error) {
	args := m.Called(ctx, nickname, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PageResponse[dto.UserCommentResponse]), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) List(ctx context.Context, userID string, page, pageSize int) (*dto.PageResponse[dto.NotificationResponse], error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PageResponse[dto.NotificationResponse]), args.Error(1)
}

func (m *MockNotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID string, notificationID int64) error {
	return m.Called(ctx, userID, notificationID).Error(0)
}

func (m *MockNotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationService) Delete(ctx context.Context, userID string, notificationID int64) error {
	return m.Called(ctx, userID, notificationID).Error(0)
}

func (m *MockNotificationService) Subscribe(ctx context.Context, userID string) (<-chan notify.Event, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan notify.Event), args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListUsers(ctx context.Context, page, pageSize int) (*dto.PageResponse[dto.UserResponse], error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PageResponse[dto.UserResponse]), args.Error(1)
}

func (m *MockAdminService) Suspend(ctx context.Context, adminID, userID string) error {
	return m.Called(ctx, adminID, userID).Error(0)
}

func (m *MockAdminService) Unsuspend(ctx context.Context, adminID, userID string) error {
	return m.Called(ctx, adminID, userID).Error(0)
}

var anyCtx = mock.Anything
