package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"auctionhouse/adapters/memory"
	"auctionhouse/auth"
	"auctionhouse/models"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

// captureMailer 保存寄出的信件，讓測試可以取得驗證碼
type captureMailer struct {
	mu     sync.Mutex
	bodies map[string][]string
}

func (m *captureMailer) Send(_ context.Context, to, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies[to] = append(m.bodies[to], body)
	return nil
}

var otpPattern = regexp.MustCompile(`code is (\d{6})`)

func (m *captureMailer) lastOTP(t *testing.T, email string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.bodies[email]) - 1; i >= 0; i-- {
		if match := otpPattern.FindStringSubmatch(m.bodies[email][i]); match != nil {
			return match[1]
		}
	}
	t.Fatalf("no otp sent to %s", email)
	return ""
}

type testServer struct {
	now    time.Time
	db     *memory.DB
	impl   *ServerImpl
	router *gin.Engine
	mailer *captureMailer
	blobs  *memory.BlobStore
}

func newTestServer(t *testing.T, configure ...func(*ServerConfig)) *testServer {
	t.Helper()
	s := &testServer{now: baseTime, mailer: &captureMailer{bodies: map[string][]string{}}}
	clock := func() time.Time { return s.now }
	s.db = memory.NewDB(memory.WithClock(clock))
	blobs, err := memory.NewBlobStore("http://localhost/media/")
	require.NoError(t, err)
	s.blobs = blobs

	config := ServerConfig{
		StoreBackend:   StoreBackendMemory,
		RequestTimeout: 5 * time.Second,
		Auth:           AuthConfig{Secret: "test-secret", Issuer: "auctionhouse"},
		S3:             S3Config{RateLimitPerHour: 3},
	}
	for _, c := range configure {
		c(&config)
	}
	impl, err := NewServerWithDependencies(config, Dependencies{
		Store:    memory.NewStore(s.db),
		Users:    memory.NewUserRepository(s.db),
		Tokens:   memory.NewTokenRepository(s.db),
		OTPs:     memory.NewOTPStore(s.db),
		Guests:   memory.NewGuestRepository(s.db, 0),
		Locker:   memory.NewLocker(),
		Images:   memory.NewImageRepository(s.db),
		Uploader: blobs,
		Mailer:   s.mailer,

		SiteDetails: memory.NewSiteDetailRepository(s.db),
		Subscribers: memory.NewSubscriberRepository(s.db),
		Now:         clock,
	})
	require.NoError(t, err)
	impl.blobs = blobs
	s.impl = impl
	s.router = gin.New()
	impl.RegisterHandlers(s.router)
	t.Cleanup(impl.Close)
	return s
}

type request struct {
	method  string
	path    string
	body    any
	raw     []byte
	token   string
	headers map[string]string
}

type result struct {
	code   int
	header http.Header
	body   Response
	raw    []byte
}

func (s *testServer) do(t *testing.T, req request) result {
	t.Helper()
	var reader io.Reader
	switch {
	case req.raw != nil:
		reader = bytes.NewReader(req.raw)
	case req.body != nil:
		b, err := json.Marshal(req.body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	r := httptest.NewRequest(req.method, req.path, reader)
	if req.body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)

	res := result{code: w.Code, header: w.Header(), raw: w.Body.Bytes()}
	_ = json.Unmarshal(res.raw, &res.body)
	return res
}

// decode 把回應的 data 轉成指定的型別
func decode[T any](t *testing.T, res result) T {
	t.Helper()
	var v T
	b, err := json.Marshal(res.body.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &v))
	return v
}

// user 直接建立已驗證的使用者並登入
func (s *testServer) user(t *testing.T, first string) (models.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user := models.User{
		FirstName:       first,
		LastName:        "Tester",
		Email:           uuid.NewString() + "@example.com",
		PasswordHash:    hash,
		IsEmailVerified: true,
	}
	require.NoError(t, memory.NewUserRepository(s.db).Create(context.Background(), &user))
	return user, s.login(t, user.Email, nil)
}

func (s *testServer) login(t *testing.T, email string, headers map[string]string) string {
	t.Helper()
	res := s.do(t, request{
		method:  http.MethodPost,
		path:    "/api/v1/auth/login",
		body:    map[string]string{"email": email, "password": "password123"},
		headers: headers,
	})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	return decode[tokensData](t, res).Access
}

func (s *testServer) category(t *testing.T, name, slug string) {
	t.Helper()
	require.NoError(t, memory.NewStore(s.db).Categories().Create(context.Background(), &models.Category{Name: name, Slug: slug}))
}

// listing 透過 API 建立拍賣品並回傳 slug
func (s *testServer) listing(t *testing.T, token, name, category, price string) string {
	t.Helper()
	res := s.do(t, request{
		method: http.MethodPost,
		path:   "/api/v1/auctioneer/listings",
		token:  token,
		body: map[string]any{
			"name":         name,
			"desc":         "A nice item",
			"category":     category,
			"price":        price,
			"closing_date": s.now.Add(24 * time.Hour),
		},
	})
	require.Equal(t, http.StatusCreated, res.code, string(res.raw))
	return decode[listingData](t, res).Slug
}
