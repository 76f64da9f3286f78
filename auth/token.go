package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired          = errors.New("token is expired")
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
)

// AccessClaims 是 access token 的內容
type AccessClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// refreshClaims 是 refresh token 的內容，只有過期時間與隨機字串，不帶任何身分
type refreshClaims struct {
	Data string `json:"data"`
	jwt.RegisteredClaims
}

// Codec 使用 HS256 簽發與驗證 token
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

type CodecOption func(*Codec)

func WithCodecIssuer(issuer string) CodecOption {
	return func(c *Codec) {
		c.issuer = issuer
	}
}

func WithCodecClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(secret []byte, opts ...CodecOption) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	c := &Codec{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Codec) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := c.now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    c.issuer,
		ID:        uuid.NewString(),
	}
}

// IssueAccessToken 簽發帶有使用者 ID 的 access token
func (c *Codec) IssueAccessToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	const op = "IssueAccessToken"
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		UserID:           userID.String(),
		RegisteredClaims: c.registered(ttl),
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to sign token, err=%w", op, err)
	}
	return signed, nil
}

// IssueRefreshToken 簽發 refresh token，身分由 TokenPair 的關聯決定
func (c *Codec) IssueRefreshToken(ttl time.Duration) (string, error) {
	const op = "IssueRefreshToken"
	nonce := make([]byte, 10)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("[%s] Fail to generate nonce, err=%w", op, err)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims{
		Data:             base64.RawURLEncoding.EncodeToString(nonce),
		RegisteredClaims: c.registered(ttl),
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to sign token, err=%w", op, err)
	}
	return signed, nil
}

// VerifyAccessToken 驗證 access token 並回傳內容
func (c *Codec) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// VerifyRefreshToken 驗證 refresh token 的簽章與期限
func (c *Codec) VerifyRefreshToken(tokenString string) error {
	return c.parse(tokenString, &refreshClaims{})
}

func (c *Codec) parse(tokenString string, claims jwt.Claims) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, opts...)
	switch {
	case err == nil && token.Valid:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignatureInvalid
	default:
		return ErrTokenMalformed
	}
}
