package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"auctionhouse/auction"
	"auctionhouse/auth"
	"auctionhouse/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGinMiddleware(t *testing.T) {
	userID := uuid.New()
	tests := []struct {
		name      string
		opts      []MiddlewareOption
		headers   map[string]string
		wantCreds auth.Credentials
		client    auction.Client
	}{
		{
			name:      "預設的訪客 header",
			headers:   map[string]string{"Guestuserid": "guest-1"},
			wantCreds: auth.Credentials{GuestID: "guest-1"},
			client:    auction.GuestUser{ID: "guest-1"},
		},
		{
			name:      "自訂訪客 header",
			opts:      []MiddlewareOption{WithGuestHeader("X-Guest")},
			headers:   map[string]string{"X-Guest": "guest-2", "Guestuserid": "ignored"},
			wantCreds: auth.Credentials{GuestID: "guest-2"},
			client:    auction.GuestUser{ID: "guest-2"},
		},
		{
			name:      "帶 Authorization",
			headers:   map[string]string{"Authorization": "Bearer abc"},
			wantCreds: auth.Credentials{Authorization: "Bearer abc"},
			client:    auction.AuthenticatedUser{ID: userID},
		},
		{
			name:      "沒有任何 header",
			wantCreds: auth.Credentials{},
			client:    auction.Anonymous{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			resolver := NewMockIResolver(ctrl)
			resolver.EXPECT().ResolveClient(gomock.Any(), tt.wantCreds).Return(tt.client)

			var got auction.Client
			router := gin.New()
			router.Use(GinMiddleware(resolver, tt.opts...))
			router.GET("/", func(c *gin.Context) {
				got = GetClient(c)
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, tt.client, got)
		})
	}
}

func TestRequireUser(t *testing.T) {
	user := models.User{ID: uuid.New(), Email: "ada@example.com", IsEmailVerified: true}
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "有效的使用者", wantStatus: http.StatusOK},
		{name: "沒有登入", err: auth.ErrUnauthorized, wantStatus: http.StatusUnauthorized, wantBody: "Unauthorized User!"},
		{name: "token 無效", err: auth.ErrInvalidToken, wantStatus: http.StatusUnauthorized, wantBody: "Token is Invalid or Expired"},
		{name: "資料庫錯誤", err: fmt.Errorf("[ResolveUser] Fail to find user, err=%w", errors.New("boom")), wantStatus: http.StatusInternalServerError, wantBody: "Internal server error"},
		{name: "逾時", err: fmt.Errorf("[ResolveUser] Fail to find user, err=%w", context.DeadlineExceeded), wantStatus: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			resolver := NewMockIResolver(ctrl)
			if tt.err != nil {
				resolver.EXPECT().ResolveUser(gomock.Any(), gomock.Any()).Return(models.User{}, tt.err)
			} else {
				resolver.EXPECT().ResolveUser(gomock.Any(), gomock.Any()).Return(user, nil)
			}

			handled := false
			router := gin.New()
			router.GET("/", RequireUser(resolver), func(c *gin.Context) {
				handled = true
				got, ok := GetUser(c)
				assert.True(t, ok)
				assert.Equal(t, user.ID, got.ID)
				assert.Equal(t, auth.AuthenticatedUserOf(user), GetClient(c))
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer abc")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.err == nil, handled)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestGetClient_WithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, auction.Anonymous{}, GetClient(c))
	_, ok := GetUser(c)
	assert.False(t, ok)
}
