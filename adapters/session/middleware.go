package session

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionhouse/auction"
	"auctionhouse/auth"
	"auctionhouse/models"
)

const (
	DefaultGuestHeader = "Guestuserid"

	clientKeyForContext = "auctionhouse-client"
	userKeyForContext   = "auctionhouse-user"
)

// MiddlewareOptions 包含身分解析 middleware 的設定選項
type MiddlewareOptions struct {
	guestHeader string // 訪客身分所在的 header
}

// MiddlewareOption 定義設定選項的函數類型
type MiddlewareOption func(*MiddlewareOptions)

// WithGuestHeader 設定訪客身分所在的 header
func WithGuestHeader(header string) MiddlewareOption {
	return func(options *MiddlewareOptions) {
		if header != "" {
			options.guestHeader = header
		}
	}
}

func newMiddlewareOptions(opts ...MiddlewareOption) MiddlewareOptions {
	options := MiddlewareOptions{
		guestHeader: DefaultGuestHeader,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func credentialsOf(c *gin.Context, options MiddlewareOptions) auth.Credentials {
	return auth.Credentials{
		Authorization: c.GetHeader("Authorization"),
		GuestID:       c.GetHeader(options.guestHeader),
	}
}

// GinMiddleware 解析每個請求的 client 並放進 gin context，這個 middleware 不會中斷請求
func GinMiddleware(resolver IResolver, opts ...MiddlewareOption) gin.HandlerFunc {
	options := newMiddlewareOptions(opts...)
	return func(c *gin.Context) {
		client := resolver.ResolveClient(c.Request.Context(), credentialsOf(c, options))
		c.Set(clientKeyForContext, client)
		c.Next()
	}
}

// RequireUser 只允許持有有效 access token 的使用者通過
func RequireUser(resolver IResolver, opts ...MiddlewareOption) gin.HandlerFunc {
	options := newMiddlewareOptions(opts...)
	return func(c *gin.Context) {
		const op = "RequireUser"
		user, err := resolver.ResolveUser(c.Request.Context(), credentialsOf(c, options))
		if err != nil {
			kind := auction.KindOf(err)
			if kind != auction.KindUnauthorized {
				slog.Error("Fail to resolve user", slog.String("op", op), slog.Any("error", err))
				status := http.StatusInternalServerError
				message := "Internal server error"
				if kind == auction.KindTransient {
					status = http.StatusServiceUnavailable
					message = "Service temporarily unavailable"
				}
				c.AbortWithStatusJSON(status, gin.H{"status": "failure", "message": message})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "failure", "message": auction.MessageOf(err)})
			return
		}
		c.Set(userKeyForContext, user)
		c.Set(clientKeyForContext, auth.AuthenticatedUserOf(user))
		c.Next()
	}
}

// GetClient 取得 middleware 解析出的 client，沒有經過 middleware 時為 Anonymous
func GetClient(c *gin.Context) auction.Client {
	v, ok := c.Get(clientKeyForContext)
	if !ok {
		return auction.Anonymous{}
	}
	client, ok := v.(auction.Client)
	if !ok {
		return auction.Anonymous{}
	}
	return client
}

// GetUser 取得 RequireUser 解析出的使用者
func GetUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userKeyForContext)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
