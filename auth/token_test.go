package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionhouse/auth"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestNewCodec(t *testing.T) {
	_, err := auth.NewCodec(nil)
	assert.Error(t, err)

	codec, err := auth.NewCodec([]byte("secret"))
	require.NoError(t, err)
	assert.NotNil(t, codec)
}

func TestCodec_AccessToken(t *testing.T) {
	now := baseTime
	codec, err := auth.NewCodec([]byte("secret"), auth.WithCodecClock(fixedClock(&now)), auth.WithCodecIssuer("auctionhouse"))
	require.NoError(t, err)
	other, err := auth.NewCodec([]byte("other"), auth.WithCodecClock(fixedClock(&now)), auth.WithCodecIssuer("auctionhouse"))
	require.NoError(t, err)
	userID := uuid.New()

	token, err := codec.IssueAccessToken(userID, time.Minute)
	require.NoError(t, err)

	t.Run("有效", func(t *testing.T) {
		claims, err := codec.VerifyAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.Equal(t, "auctionhouse", claims.Issuer)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("相同時間簽發的 token 不同", func(t *testing.T) {
		again, err := codec.IssueAccessToken(userID, time.Minute)
		require.NoError(t, err)
		assert.NotEqual(t, token, again)
	})

	t.Run("簽章錯誤", func(t *testing.T) {
		_, err := other.VerifyAccessToken(token)
		assert.ErrorIs(t, err, auth.ErrTokenSignatureInvalid)
	})

	t.Run("格式錯誤", func(t *testing.T) {
		_, err := codec.VerifyAccessToken("not-a-token")
		assert.ErrorIs(t, err, auth.ErrTokenMalformed)
	})

	t.Run("竄改內容", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1] + "x." + parts[2]
		_, err := codec.VerifyAccessToken(tampered)
		assert.Error(t, err)
	})

	t.Run("不接受其他演算法", func(t *testing.T) {
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, auth.AccessClaims{
			UserID:           userID.String(),
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = codec.VerifyAccessToken(none)
		assert.Error(t, err)
	})

	t.Run("過期", func(t *testing.T) {
		later := now.Add(2 * time.Minute)
		expired, err := auth.NewCodec([]byte("secret"), auth.WithCodecClock(fixedClock(&later)), auth.WithCodecIssuer("auctionhouse"))
		require.NoError(t, err)
		_, err = expired.VerifyAccessToken(token)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
	})

	t.Run("refresh token 不能當作 access token", func(t *testing.T) {
		refresh, err := codec.IssueRefreshToken(time.Minute)
		require.NoError(t, err)
		_, err = codec.VerifyAccessToken(refresh)
		assert.ErrorIs(t, err, auth.ErrTokenMalformed)
	})
}

func TestCodec_RefreshToken(t *testing.T) {
	now := baseTime
	codec, err := auth.NewCodec([]byte("secret"), auth.WithCodecClock(fixedClock(&now)))
	require.NoError(t, err)

	a, err := codec.IssueRefreshToken(time.Hour)
	require.NoError(t, err)
	b, err := codec.IssueRefreshToken(time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NoError(t, codec.VerifyRefreshToken(a))

	now = now.Add(2 * time.Hour)
	assert.ErrorIs(t, codec.VerifyRefreshToken(a), auth.ErrTokenExpired)
}
