package metrics

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"dtalks/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type nopBroker struct{}

func (nopBroker) Publish(context.Context, notify.Event) error { return nil }
func (nopBroker) Subscribe(context.Context, string) (<-chan notify.Event, error) {
	return nil, nil
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMiddleware_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/posts/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/posts/1", "/api/posts/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	body := scrape(t, m)
	assert.Contains(t, body, `dtalks_http_requests_total{method="GET",route="/api/posts/:id",status="200"} 2`)
	assert.Contains(t, body, `dtalks_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, body, "dtalks_http_request_duration_seconds_bucket")
}

func TestWatchDispatcher(t *testing.T) {
	m := New()
	d := notify.NewDispatcher(nopBroker{}, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.WatchDispatcher(d)

	// nobody runs the queue: the second event is dropped
	d.Emit(context.Background(), notify.Event{NotificationID: 1})
	d.Emit(context.Background(), notify.Event{NotificationID: 2})

	body := scrape(t, m)
	assert.Contains(t, body, "dtalks_notify_dropped_total 1")
	assert.Contains(t, body, "dtalks_notify_published_total 0")
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
