package gormdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionhouse/adapters/gormdb"
	"auctionhouse/auction"
	"auctionhouse/models"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	users := gormdb.NewUserRepository(setupDB(t))

	user := models.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", PasswordHash: "hash"}
	require.NoError(t, users.Create(ctx, &user))
	assert.NotEqual(t, uuid.Nil, user.ID)

	assert.ErrorIs(t, users.Create(ctx, &models.User{Email: "ada@example.com"}), auction.ErrConflict)

	got, err := users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.False(t, got.IsEmailVerified)

	got.IsEmailVerified = true
	require.NoError(t, users.Update(ctx, &got))
	got, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsEmailVerified)

	_, err = users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, auction.ErrNotFound)
}

func TestTokenRepository(t *testing.T) {
	ctx := context.Background()
	tokens := gormdb.NewTokenRepository(setupDB(t))
	userID := uuid.New()

	require.NoError(t, tokens.Replace(ctx, &models.TokenPair{UserID: userID, Access: "a1", Refresh: "r1"}))
	require.NoError(t, tokens.Replace(ctx, &models.TokenPair{UserID: userID, Access: "a2", Refresh: "r2"}))

	pair, err := tokens.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "a2", pair.Access)

	_, err = tokens.GetByRefresh(ctx, "r1")
	assert.ErrorIs(t, err, auction.ErrNotFound)
	pair, err = tokens.GetByRefresh(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, userID, pair.UserID)

	require.NoError(t, tokens.DeleteByUserID(ctx, userID))
	assert.ErrorIs(t, tokens.DeleteByUserID(ctx, userID), auction.ErrNotFound)
}

func TestImageRepository(t *testing.T) {
	ctx := context.Background()
	images := gormdb.NewImageRepository(setupDB(t))
	uploader := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, images.Create(ctx, &models.Image{UploaderID: uploader, Url: "https://cdn.example.com/" + uuid.NewString()}))
	}
	require.NoError(t, images.Create(ctx, &models.Image{UploaderID: uuid.New(), Url: "https://cdn.example.com/other"}))

	count, err := images.CountSince(ctx, uploader, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	count, err = images.CountSince(ctx, uploader, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
