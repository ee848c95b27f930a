package notify

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server only when REDIS_TEST_URL is set.
func TestRedisBroker_RoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	client, err := NewRedisClient(url, "")
	require.NoError(t, err)
	broker := NewRedisBroker(client, quietLogger())
	defer broker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := broker.Subscribe(ctx, "redis-test-user")
	require.NoError(t, err)

	postID := int64(12)
	require.NoError(t, broker.Publish(ctx, Event{NotificationID: 1, ReceiverID: "redis-test-user", Type: "COMMENT", PostID: &postID}))

	select {
	case e := <-events:
		assert.Equal(t, int64(1), e.NotificationID)
		require.NotNil(t, e.PostID)
		assert.Equal(t, postID, *e.PostID)
	case <-ctx.Done():
		t.Fatal("event not delivered")
	}
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient("not a url", "")
	assert.Error(t, err)
}
