package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"dtalks/internal/metrics"
	"dtalks/internal/microservices/http-api/middleware"
	"dtalks/internal/microservices/http-api/service"
	"dtalks/internal/microservices/websocket"

	"github.com/gin-gonic/gin"
)

// Services bundles everything the router dispatches to.
type Services struct {
	Auth          service.AuthService
	Posts         service.PostService
	Recommends    service.RecommendService
	Comments      service.CommentService
	Notifications service.NotificationService
	Admin         service.AdminUserService
	// Health reports storage reachability for /healthz; nil means always healthy.
	Health func(ctx context.Context) error
}

type RouterOptions struct {
	CORSOrigins []string
	RateLimiter *middleware.RateLimiter
	Middleware  []gin.HandlerFunc
	Logger      *slog.Logger
	// Metrics instruments every route and serves /metrics when set.
	Metrics *metrics.Metrics
}

func NewRouter(svc Services, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	r.Use(opts.Middleware...)
	if len(opts.CORSOrigins) > 0 {
		r.Use(middleware.CORS(opts.CORSOrigins))
	}

	r.GET("/healthz", healthz(svc.Health))

	authH := NewAuthHandler(svc.Auth)
	postH := NewPostHandler(svc.Posts, svc.Recommends)
	commentH := NewCommentHandler(svc.Comments)
	notificationH := NewNotificationHandler(svc.Notifications)
	adminH := NewAdminHandler(svc.Admin)

	api := r.Group("/api")
	authH.RegisterRoutes(api)

	public := api.Group("")
	public.Use(middleware.OptionalAuth(svc.Auth))
	postH.RegisterPublicRoutes(public)
	commentH.RegisterPublicRoutes(public)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(svc.Auth))
	if opts.RateLimiter != nil {
		protected.Use(opts.RateLimiter.Middleware())
	}
	postH.RegisterRoutes(protected)
	commentH.RegisterRoutes(protected)
	notificationH.RegisterRoutes(protected)
	protected.GET("/notifications/ws", websocket.NewHandler(svc.Notifications, opts.CORSOrigins, opts.Logger).Serve)

	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin())
	adminH.RegisterRoutes(admin)

	return r
}

func healthz(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
