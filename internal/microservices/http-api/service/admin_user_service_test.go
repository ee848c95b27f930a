package service

import (
	"context"
	"testing"
	"time"

	"dtalks/internal/microservices/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminUserService(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	svc := NewAdminUserService(store, quietLogger())

	admin := mustUser(store, "admin", true)
	alice := mustUser(store, "alice", true)

	require.NoError(t, store.RefreshTokens().Create(ctx, &models.RefreshToken{
		ID:        "rt-1",
		UserID:    alice.ID,
		Token:     "alice-refresh",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	page, err := svc.ListUsers(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	assert.ErrorIs(t, svc.Suspend(ctx, admin.ID, admin.ID), ErrInvalid)
	assert.ErrorIs(t, svc.Suspend(ctx, admin.ID, "nobody"), ErrNotFound)

	require.NoError(t, svc.Suspend(ctx, admin.ID, alice.ID))
	u, err := store.Users().FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	token, err := store.RefreshTokens().FindByToken(ctx, "alice-refresh")
	require.NoError(t, err)
	assert.True(t, token.Revoked)

	require.NoError(t, svc.Unsuspend(ctx, admin.ID, alice.ID))
	u, err = store.Users().FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, u.IsActive)
}
