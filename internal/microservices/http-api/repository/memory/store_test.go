package memory

import (
	"context"
	"errors"
	"testing"

	"dtalks/internal/microservices/http-api/models"
	"dtalks/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store) (*models.User, *models.Post) {
	t.Helper()
	ctx := context.Background()

	u := &models.User{Username: "alice", Nickname: "alice", Email: "alice@example.com", IsActive: true}
	require.NoError(t, s.Users().Create(ctx, u))

	p := &models.Post{UserID: u.ID, Title: "hello", Content: "world"}
	require.NoError(t, s.Posts().Create(ctx, p))
	return u, p
}

func TestWithinTx_RollbackRestoresSnapshot(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, p := seed(t, s)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx repository.Repositories) error {
		require.NoError(t, tx.Comments().Create(ctx, &models.Comment{PostID: p.ID, UserID: u.ID, Content: "c"}))
		require.NoError(t, tx.Posts().IncrementCommentCount(ctx, p.ID))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	comments, err := s.Comments().FindAllByPostOrderByCreatedAsc(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	post, err := s.Posts().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), post.CommentCount)
}

func TestWithinTx_Commit(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, p := seed(t, s)

	err := s.WithinTx(ctx, func(tx repository.Repositories) error {
		return tx.Comments().Create(ctx, &models.Comment{PostID: p.ID, UserID: u.ID, Content: "c"})
	})
	require.NoError(t, err)

	comments, err := s.Comments().FindAllByPostOrderByCreatedAsc(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "alice", comments[0].User.Nickname)
}

func TestDeleteByIDs_CascadesToDescendants(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, p := seed(t, s)

	root := &models.Comment{PostID: p.ID, UserID: u.ID, Content: "root"}
	require.NoError(t, s.Comments().Create(ctx, root))
	child := &models.Comment{PostID: p.ID, UserID: u.ID, ParentID: &root.ID, Content: "child"}
	require.NoError(t, s.Comments().Create(ctx, child))
	grandchild := &models.Comment{PostID: p.ID, UserID: u.ID, ParentID: &child.ID, Content: "grandchild"}
	require.NoError(t, s.Comments().Create(ctx, grandchild))

	require.NoError(t, s.Comments().DeleteByIDs(ctx, []int64{root.ID}))

	_, err := s.Comments().FindByID(ctx, grandchild.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestComments_ExistsByPost(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, p := seed(t, s)

	exists, err := s.Comments().ExistsByPost(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Comments().Create(ctx, &models.Comment{PostID: p.ID, UserID: u.ID, Content: "hi"}))

	exists, err = s.Comments().ExistsByPost(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestNotifications_OnePerRefAndType(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, p := seed(t, s)

	ref := int64(7)
	first := &models.Notification{ReceiverID: u.ID, RefID: &ref, Type: models.NotificationComment, PostID: &p.ID}
	require.NoError(t, s.Notifications().Create(ctx, first))

	again := &models.Notification{ReceiverID: u.ID, RefID: &ref, Type: models.NotificationComment, PostID: &p.ID}
	assert.ErrorIs(t, s.Notifications().Create(ctx, again), repository.ErrDuplicate)

	other := &models.Notification{ReceiverID: u.ID, RefID: &ref, Type: models.NotificationRecomment, PostID: &p.ID}
	assert.NoError(t, s.Notifications().Create(ctx, other))

	// released rows have no reference left and never collide
	require.NoError(t, s.Notifications().MarkReadDataGone(ctx, first.ID))
	require.NoError(t, s.Notifications().MarkReadDataGone(ctx, other.ID))
	assert.NoError(t, s.Notifications().Create(ctx, &models.Notification{ReceiverID: u.ID, Type: models.NotificationComment}))
}

func TestUsers_Duplicate(t *testing.T) {
	s := New()
	ctx := context.Background()
	seed(t, s)

	err := s.Users().Create(ctx, &models.User{Username: "bob", Nickname: "alice", Email: "bob@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestRecommendations_Duplicate(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, p := seed(t, s)

	require.NoError(t, s.Recommendations().Create(ctx, &models.PostRecommendation{UserID: u.ID, PostID: p.ID}))
	err := s.Recommendations().Create(ctx, &models.PostRecommendation{UserID: u.ID, PostID: p.ID})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	ok, err := s.Recommendations().Exists(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanceledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Posts().FindByID(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
