package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dtalks/internal/microservices/http-api/dto"
	"dtalks/internal/microservices/http-api/models"
	"dtalks/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuth accepts exactly one token per role.
type stubAuth struct{}

func (stubAuth) Register(context.Context, dto.RegisterRequest) (*models.User, error) { return nil, nil }
func (stubAuth) Login(context.Context, string, string) (string, string, *models.User, error) {
	return "", "", nil, nil
}
func (stubAuth) RefreshAccessToken(context.Context, string) (string, error) { return "", nil }
func (stubAuth) Revoke(context.Context, string) error                       { return nil }
func (stubAuth) AccessTokenTTL() time.Duration                               { return time.Minute }
func (stubAuth) ValidateToken(token string) (*service.Claims, error) {
	switch token {
	case "user-token":
		return &service.Claims{UserID: "u1", Role: models.RoleUser}, nil
	case "admin-token":
		return &service.Claims{UserID: "a1", Role: models.RoleAdmin}, nil
	}
	return nil, service.ErrInvalidToken
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	echo := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c), "role": c.GetString(ContextRole)})
	}
	r.GET("/x", echo)
	r.POST("/x", echo)
	return r
}

func do(r http.Handler, method, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/x", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine(AuthMiddleware(stubAuth{}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"MissingHeader", "", http.StatusUnauthorized},
		{"WrongScheme", "Basic user-token", http.StatusUnauthorized},
		{"EmptyToken", "Bearer ", http.StatusUnauthorized},
		{"InvalidToken", "Bearer nope", http.StatusUnauthorized},
		{"Valid", "Bearer user-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.header)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	w := do(r, http.MethodGet, "Bearer user-token")
	assert.Contains(t, w.Body.String(), `"user_id":"u1"`)
}

func TestOptionalAuth(t *testing.T) {
	r := newEngine(OptionalAuth(stubAuth{}))

	w := do(r, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":""`)

	w = do(r, http.MethodGet, "Bearer nope")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":""`)

	w = do(r, http.MethodGet, "Bearer user-token")
	assert.Contains(t, w.Body.String(), `"user_id":"u1"`)
}

func TestRequireAdmin(t *testing.T) {
	r := newEngine(AuthMiddleware(stubAuth{}), RequireAdmin())

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "Bearer user-token").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "Bearer admin-token").Code)

	// no role in context at all
	bare := newEngine(RequireRole(models.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, do(bare, http.MethodGet, "").Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	limiter.lastSweep = now

	r := newEngine(AuthMiddleware(stubAuth{}), limiter.Middleware())

	t.Run("BurstThenReject", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "Bearer user-token").Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "Bearer user-token").Code)

		w := do(r, http.MethodPost, "Bearer user-token")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
	})

	t.Run("ReadsAreNotLimited", func(t *testing.T) {
		for range 5 {
			assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "Bearer user-token").Code)
		}
	})

	t.Run("BucketsArePerUser", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "Bearer admin-token").Code)
	})

	t.Run("Refill", func(t *testing.T) {
		now = now.Add(time.Second)
		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "Bearer user-token").Code)
	})

	t.Run("IdleCallersAreSwept", func(t *testing.T) {
		require.Equal(t, 2, limiter.size())
		now = now.Add(limiterIdleTTL + limiterSweepEvery + time.Second)
		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "Bearer admin-token").Code)
		assert.Equal(t, 1, limiter.size())
	})
}

func TestRateLimiter_AnonymousKeyedByIP(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	r := newEngine(limiter.Middleware())

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "").Code)
}

func TestCORS(t *testing.T) {
	r := newEngine(CORS([]string{"http://app.test"}))

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://app.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.test", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	wild := newEngine(CORS([]string{"*"}))
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://any.test")
	w = httptest.NewRecorder()
	wild.ServeHTTP(w, req)
	assert.Equal(t, "http://any.test", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := newEngine(AuthMiddleware(stubAuth{}), RequestLogger(logger))

	do(r, http.MethodGet, "Bearer user-token")

	line := buf.String()
	assert.Contains(t, line, "http_request")
	assert.Contains(t, line, "status=200")
	assert.Contains(t, line, "user_id=u1")
	assert.Contains(t, line, "path=/x")
}

func TestAuthMiddleware_WebsocketQueryToken(t *testing.T) {
	r := newEngine(AuthMiddleware(stubAuth{}))

	req := httptest.NewRequest(http.MethodGet, "/x?access_token=user-token", nil)
	req.Header.Set("Upgrade", "websocket")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// plain requests must use the header
	req = httptest.NewRequest(http.MethodGet, "/x?access_token=user-token", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
