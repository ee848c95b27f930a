package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"dtalks/internal/microservices/http-api/middleware"
	"dtalks/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handler upgrades authenticated requests into notification sockets.
type Handler struct {
	notifications service.NotificationService
	upgrader      websocket.Upgrader
	logger        *slog.Logger
}

// NewHandler accepts connections from the given origins; "*" allows any.
// Requests without an Origin header (non-browser clients) are allowed.
func NewHandler(notifications service.NotificationService, origins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	wildcard := slices.Contains(origins, "*")
	return &Handler{
		notifications: notifications,
		logger:        logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || wildcard || slices.Contains(origins, origin)
			},
		},
	}
}

// Serve handles GET /api/notifications/ws
func (h *Handler) Serve(c *gin.Context) {
	// get user info from JWT middleware
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: user ID not found"})
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// subscribe first so a broker failure is still a plain HTTP error
	events, err := h.notifications.Subscribe(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrStreamUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("ws_subscribe_failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader already wrote the HTTP error
		h.logger.Warn("ws_upgrade_failed", "user_id", userID, "error", err)
		return
	}

	h.logger.Info("ws_connected", "user_id", userID)
	client := NewClient(userID, conn, events, h.logger)
	go client.ReadPump(cancel)
	client.WritePump(ctx)
	h.logger.Info("ws_disconnected", "user_id", userID)
}
