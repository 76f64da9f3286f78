package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"

	"auctionhouse/adapters/gormdb"
	"auctionhouse/adapters/memory"
	redisAdapter "auctionhouse/adapters/redis"
	internalS3 "auctionhouse/adapters/s3"
	"auctionhouse/adapters/session"
	"auctionhouse/auction"
	"auctionhouse/auth"
	"auctionhouse/general"
	"auctionhouse/media"
)

// Dependencies 是 ServerImpl 需要的所有儲存層與外部服務
type Dependencies struct {
	Store    auction.Store
	Users    auth.UserRepository
	Tokens   auth.TokenRepository
	OTPs     auth.OTPStore
	Guests   auction.GuestRepository
	Locker   auction.Locker
	Images   media.ImageRepository
	Uploader media.Uploader
	Mailer   auth.Mailer

	SiteDetails general.SiteDetailRepository
	Subscribers general.SubscriberRepository
	// Now 為 nil 時使用 time.Now
	Now func() time.Time
}

type ServerImpl struct {
	resolver    *auth.Resolver
	sessions    *auth.SessionManager
	accounts    *auth.AccountService
	listings    *auction.ListingService
	bids        *auction.BidService
	watchlist   *auction.WatchlistService
	media       *media.Service
	general     *general.Service
	blobs       *memory.BlobStore
	htmlChecker *bluemonday.Policy
	closers     []func() error

	config ServerConfig
}

// NewServer 依照設定建立儲存層並組裝所有服務
func NewServer(config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"
	switch config.StoreBackend {
	case StoreBackendMemory:
		deps, blobs, err := newMemoryDependencies(config)
		if err != nil {
			return nil, err
		}
		impl, err := NewServerWithDependencies(config, deps)
		if err != nil {
			return nil, err
		}
		impl.blobs = blobs
		impl.startGuestJanitor(config.Redis.GuestCleanupInterval)
		slog.Warn("Use in-memory store, all data will be lost on shutdown")
		return impl, nil
	case StoreBackendPostgres, "":
		deps, closers, err := newPostgresDependencies(config)
		if err != nil {
			return nil, err
		}
		impl, err := NewServerWithDependencies(config, deps)
		if err != nil {
			for _, closer := range closers {
				_ = closer()
			}
			return nil, err
		}
		impl.closers = closers
		impl.startGuestJanitor(config.Redis.GuestCleanupInterval)
		return impl, nil
	default:
		return nil, fmt.Errorf("[%s] Unknown store backend, backend=%s", op, config.StoreBackend)
	}
}

func newMemoryDependencies(config ServerConfig) (Dependencies, *memory.BlobStore, error) {
	const op = "newMemoryDependencies"
	db := memory.NewDB()
	baseURL := config.S3.PublicBaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8080/media/"
	}
	blobs, err := memory.NewBlobStore(baseURL)
	if err != nil {
		return Dependencies{}, nil, fmt.Errorf("[%s] Fail to create blob store, err=%w", op, err)
	}
	return Dependencies{
		Store:    memory.NewStore(db),
		Users:    memory.NewUserRepository(db),
		Tokens:   memory.NewTokenRepository(db),
		OTPs:     memory.NewOTPStore(db),
		Guests:   memory.NewGuestRepository(db, config.Redis.GuestTTL),
		Locker:   memory.NewLocker(),
		Images:   memory.NewImageRepository(db),
		Uploader: blobs,
		Mailer:   auth.LogMailer{},

		SiteDetails: memory.NewSiteDetailRepository(db),
		Subscribers: memory.NewSubscriberRepository(db),
	}, blobs, nil
}

func newPostgresDependencies(config ServerConfig) (Dependencies, []func() error, error) {
	const op = "newPostgresDependencies"
	var closers []func() error
	fail := func(err error) (Dependencies, []func() error, error) {
		for _, closer := range closers {
			_ = closer()
		}
		return Dependencies{}, nil, err
	}

	// 初始化資料庫連線
	db, err := gormdb.OpenPostgres(gormdb.Config{
		User:     config.DB.User,
		Password: config.DB.Password,
		Host:     config.DB.Host,
		Port:     config.DB.Port,
		Database: config.DB.Database,
		Schema:   config.DB.Schema,
	})
	if err != nil {
		return fail(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fail(fmt.Errorf("[%s] Fail to get database handle, err=%w", op, err))
	}
	closers = append(closers, sqlDB.Close)
	if config.DB.AutoMigrate {
		if err := gormdb.Migrate(db); err != nil {
			return fail(err)
		}
	}

	// 初始化Redis連線
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	closers = append(closers, redisClient.Close)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fail(fmt.Errorf("[%s] Fail to connect to redis, err=%w", op, err))
	}

	// 初始化S3客戶端
	uploader, err := internalS3.NewUploaderFromConfig(context.Background(), internalS3.Config{
		AccessKeyID:     config.S3.AccessKeyID,
		SecretAccessKey: config.S3.SecretAccessKey,
		Endpoint:        config.S3.Endpoint,
		Bucket:          config.S3.Bucket,
		PublicBaseURL:   config.S3.PublicBaseURL,
	})
	if err != nil {
		return fail(err)
	}

	var lockOpts []redisAdapter.LockOption
	if config.Redis.LockExpiry > 0 {
		lockOpts = append(lockOpts, redisAdapter.WithLockExpiry(config.Redis.LockExpiry))
	}
	deps := Dependencies{
		Store:    gormdb.NewStore(db),
		Users:    gormdb.NewUserRepository(db),
		Tokens:   gormdb.NewTokenRepository(db),
		OTPs:     redisAdapter.NewOTPStore(redisClient, config.Redis.KeyPrefix, time.Hour),
		Guests:   redisAdapter.NewGuestStore(redisClient, config.Redis.KeyPrefix, config.Redis.GuestTTL),
		Locker:   redisAdapter.NewLocker(redisClient, config.Redis.KeyPrefix, lockOpts...),
		Images:   gormdb.NewImageRepository(db),
		Uploader: uploader,
		Mailer:   auth.LogMailer{},

		SiteDetails: gormdb.NewSiteDetailRepository(db),
		Subscribers: gormdb.NewSubscriberRepository(db),
	}
	return deps, closers, nil
}

// NewServerWithDependencies 以現成的儲存層組裝服務
func NewServerWithDependencies(config ServerConfig, deps Dependencies) (*ServerImpl, error) {
	const op = "NewServerWithDependencies"
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	codecOpts := []auth.CodecOption{auth.WithCodecClock(now)}
	if config.Auth.Issuer != "" {
		codecOpts = append(codecOpts, auth.WithCodecIssuer(config.Auth.Issuer))
	}
	codec, err := auth.NewCodec([]byte(config.Auth.Secret), codecOpts...)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create token codec, err=%w", op, err)
	}

	var sessionOpts []auth.SessionManagerOption
	if config.Auth.AccessTTL > 0 {
		sessionOpts = append(sessionOpts, auth.WithAccessTTL(config.Auth.AccessTTL))
	}
	if config.Auth.RefreshTTL > 0 {
		sessionOpts = append(sessionOpts, auth.WithRefreshTTL(config.Auth.RefreshTTL))
	}
	accountOpts := []auth.AccountServiceOption{auth.WithAccountClock(now)}
	if config.Auth.OTPTTL > 0 {
		accountOpts = append(accountOpts, auth.WithOTPTTL(config.Auth.OTPTTL))
	}

	return &ServerImpl{
		resolver:  auth.NewResolver(codec, deps.Users, deps.Tokens, deps.Guests),
		sessions:  auth.NewSessionManager(codec, deps.Tokens, deps.Locker, sessionOpts...),
		accounts:  auth.NewAccountService(deps.Users, deps.OTPs, deps.Mailer, accountOpts...),
		listings:  auction.NewListingService(deps.Store, auction.WithListingClock(now)),
		bids:      auction.NewBidService(deps.Store, deps.Locker, auction.WithBidClock(now)),
		watchlist: auction.NewWatchlistService(deps.Store, deps.Guests, deps.Locker),
		media: media.NewService(
			deps.Uploader,
			deps.Images,
			media.WithRateLimitPerHour(config.S3.RateLimitPerHour),
			media.WithClock(now),
		),
		general:     general.NewService(deps.SiteDetails, deps.Subscribers, deps.Locker),
		htmlChecker: bluemonday.UGCPolicy(),
		config:      config,
	}, nil
}

func (impl *ServerImpl) guestHeader() string {
	if impl.config.GuestHeader == "" {
		return session.DefaultGuestHeader
	}
	return impl.config.GuestHeader
}

// RegisterHandlers 註冊所有路由
func (impl *ServerImpl) RegisterHandlers(router gin.IRouter) {
	sessionOpts := []session.MiddlewareOption{session.WithGuestHeader(impl.guestHeader())}
	requireUser := session.RequireUser(impl.resolver, sessionOpts...)
	resolveClient := session.GinMiddleware(impl.resolver, sessionOpts...)

	router.GET("/healthcheck", impl.Healthcheck)
	if impl.blobs != nil {
		router.GET("/media/*key", impl.GetMedia)
	}

	v1 := router.Group("/api/v1", impl.requestTimeout())

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", impl.Register)
	authGroup.POST("/verify-email", impl.VerifyEmail)
	authGroup.POST("/resend-verification-email", impl.ResendVerificationEmail)
	authGroup.POST("/login", impl.Login)
	authGroup.POST("/refresh", impl.Refresh)
	authGroup.GET("/logout", requireUser, impl.Logout)

	listings := v1.Group("/listings")
	listings.GET("", resolveClient, impl.GetListings)
	listings.GET("/detail/:slug", resolveClient, impl.GetListingDetail)
	listings.GET("/detail/:slug/bids", impl.GetListingBids)
	listings.POST("/detail/:slug/bids", requireUser, impl.PostListingBid)
	listings.GET("/watchlist", resolveClient, impl.GetWatchlist)
	listings.POST("/watchlist", resolveClient, impl.PostWatchlist)
	listings.GET("/categories", impl.GetCategories)
	listings.GET("/categories/:slug", resolveClient, impl.GetCategoryListings)

	auctioneer := v1.Group("/auctioneer", requireUser)
	auctioneer.GET("", impl.GetProfile)
	auctioneer.PUT("", impl.PutProfile)
	auctioneer.GET("/listings", impl.GetAuctioneerListings)
	auctioneer.POST("/listings", impl.PostAuctioneerListing)
	auctioneer.PATCH("/listings/:slug", impl.PatchAuctioneerListing)
	auctioneer.GET("/listings/:slug/bids", impl.GetAuctioneerListingBids)

	v1.POST("/images", requireUser, impl.PostImage)

	generalGroup := v1.Group("/general")
	generalGroup.GET("/site-detail", impl.GetSiteDetail)
	generalGroup.POST("/subscribe", impl.PostSubscribe)
}

// requestTimeout 限制請求的處理時間，逾時的儲存層操作會回傳 503
func (impl *ServerImpl) requestTimeout() gin.HandlerFunc {
	timeout := impl.config.RequestTimeout
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// startGuestJanitor 在背景定期清除過期訪客的關注紀錄，Close 時停止
func (impl *ServerImpl) startGuestJanitor(interval time.Duration) {
	if interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		impl.watchlist.RunGuestJanitor(ctx, interval)
	}()
	impl.closers = append(impl.closers, func() error {
		cancel()
		<-done
		return nil
	})
}

// Healthcheck
// (GET /healthcheck)
func (impl *ServerImpl) Healthcheck(c *gin.Context) {
	success(c, http.StatusOK, "pong", nil)
}

func (impl *ServerImpl) Close() {
	for i := len(impl.closers) - 1; i >= 0; i-- {
		if err := impl.closers[i](); err != nil && !errors.Is(err, redis.ErrClosed) {
			slog.Error("Fail to close resource", slog.Any("error", err))
		}
	}
	impl.closers = nil
}
