package handler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"dtalks/internal/microservices/http-api/dto"
	"dtalks/internal/microservices/http-api/service"
	"dtalks/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationHandler_List(t *testing.T) {
	r, m := setupRouter(t)
	page := dto.NewPageResponse([]dto.NotificationResponse{{ID: 1, Type: "COMMENT", ReadStatus: "UNREAD"}}, 1, 1, dto.DefaultPageSize)
	m.notifications.On("List", anyCtx, "u1", 1, dto.DefaultPageSize).Return(page, nil).Once()

	w := call(r, http.MethodGet, "/api/notifications", "user:u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.PageResponse[dto.NotificationResponse]
	decode(t, w, &resp)
	assert.Equal(t, "COMMENT", resp.Data[0].Type)
}

func TestNotificationHandler_UnreadAndReadAll(t *testing.T) {
	r, m := setupRouter(t)
	m.notifications.On("UnreadCount", anyCtx, "u1").Return(int64(3), nil).Once()
	m.notifications.On("MarkAllAsRead", anyCtx, "u1").Return(int64(3), nil).Once()

	w := call(r, http.MethodGet, "/api/notifications/unread-count", "user:u1", nil)
	var unread dto.UnreadCountResponse
	decode(t, w, &unread)
	assert.Equal(t, int64(3), unread.Unread)

	w = call(r, http.MethodPut, "/api/notifications/read-all", "user:u1", nil)
	var all dto.ReadAllResponse
	decode(t, w, &all)
	assert.Equal(t, int64(3), all.Updated)
}

func TestNotificationHandler_MarkAsReadAndDelete(t *testing.T) {
	r, m := setupRouter(t)
	m.notifications.On("MarkAsRead", anyCtx, "u1", int64(4)).Return(nil).Once()
	m.notifications.On("MarkAsRead", anyCtx, "u1", int64(5)).Return(service.ErrNotificationNotFound).Once()
	m.notifications.On("Delete", anyCtx, "u1", int64(4)).Return(nil).Once()

	assert.Equal(t, http.StatusNoContent, call(r, http.MethodPut, "/api/notifications/4/read", "user:u1", nil).Code)
	assert.Equal(t, http.StatusNotFound, call(r, http.MethodPut, "/api/notifications/5/read", "user:u1", nil).Code)
	assert.Equal(t, http.StatusNoContent, call(r, http.MethodDelete, "/api/notifications/4", "user:u1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodDelete, "/api/notifications/0", "user:u1", nil).Code)
}

func TestNotificationHandler_Stream(t *testing.T) {
	r, m := setupRouter(t)

	events := make(chan notify.Event, 1)
	events <- notify.Event{NotificationID: 9, ReceiverID: "u1", Type: "COMMENT", Message: "new comment"}
	close(events)
	m.notifications.On("Subscribe", anyCtx, "u1").Return((<-chan notify.Event)(events), nil).Once()

	srv := httptest.NewServer(r)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/notifications/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer user:u1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "event:notification")
	assert.Contains(t, string(body), `"notification_id":9`)
}

func TestNotificationHandler_StreamUnavailable(t *testing.T) {
	r, m := setupRouter(t)
	m.notifications.On("Subscribe", anyCtx, "u1").Return(nil, service.ErrStreamUnavailable).Once()

	w := call(r, http.MethodGet, "/api/notifications/stream", "user:u1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
