// Package media 處理使用者上傳的圖片，圖片用於拍賣品與大頭貼
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	internalS3 "auctionhouse/adapters/s3"
	"auctionhouse/auction"
	"auctionhouse/models"
)

// DefaultMaxSize 是單張圖片的大小上限
const DefaultMaxSize int64 = 5 << 20

// Uploader 儲存檔案並回傳公開的 URL
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// ImageRepository 記錄圖片的上傳紀錄，用於計算上傳頻率
type ImageRepository interface {
	CountSince(ctx context.Context, uploaderID uuid.UUID, since time.Time) (int64, error)
	Create(ctx context.Context, image *models.Image) error
}

type Service struct {
	uploader    Uploader
	images      ImageRepository
	maxSize     int64
	ratePerHour int64
	now         func() time.Time
}

type Option func(*Service)

// WithRateLimitPerHour 設定每個使用者每小時可以上傳的數量，0 代表不限制
func WithRateLimitPerHour(n int64) Option {
	return func(s *Service) {
		s.ratePerHour = n
	}
}

func WithMaxSize(n int64) Option {
	return func(s *Service) {
		s.maxSize = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(uploader Uploader, images ImageRepository, opts ...Option) *Service {
	s := &Service{
		uploader: uploader,
		images:   images,
		maxSize:  DefaultMaxSize,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload 檢查上傳頻率、大小與檔案類型後儲存圖片
// 只接受不包含腳本的圖片格式，類型由內容判斷而不是相信客戶端
func (s *Service) Upload(ctx context.Context, uploaderID uuid.UUID, body io.Reader) (models.Image, error) {
	const op = "Upload"
	if s.ratePerHour > 0 {
		count, err := s.images.CountSince(ctx, uploaderID, s.now().Add(-time.Hour))
		if err != nil {
			return models.Image{}, fmt.Errorf("[%s] Fail to count uploaded images, err=%w", op, err)
		}
		if count >= s.ratePerHour {
			return models.Image{}, &auction.Error{Kind: auction.KindRateLimited, Message: "Too many uploads, try again later"}
		}
	}

	file, err := io.ReadAll(internalS3.NewMaxSizeReader(body, s.maxSize))
	if errors.As(err, &internalS3.ErrReachLimitType) {
		return models.Image{}, &auction.Error{Kind: auction.KindInvalidInput, Message: err.Error()}
	}
	if err != nil {
		return models.Image{}, fmt.Errorf("[%s] Fail to read image, err=%w", op, err)
	}
	if len(file) == 0 {
		return models.Image{}, &auction.Error{Kind: auction.KindInvalidInput, Message: "Empty image"}
	}
	mimeType := http.DetectContentType(file)
	secure, ext := internalS3.CheckSecureImageAndGetExtension(mimeType)
	if !secure {
		return models.Image{}, &auction.Error{Kind: auction.KindInvalidInput, Message: fmt.Sprintf("Invalid image type: %s", mimeType)}
	}

	url, err := s.uploader.Upload(ctx, uuid.NewString()+"."+ext, mimeType, file)
	if err != nil {
		return models.Image{}, fmt.Errorf("[%s] Fail to upload image, err=%w", op, err)
	}
	image := models.Image{UploaderID: uploaderID, Url: url}
	if err := s.images.Create(ctx, &image); err != nil {
		return models.Image{}, fmt.Errorf("[%s] Fail to create image, err=%w", op, err)
	}
	slog.Info("Image uploaded", slog.String("uploader", uploaderID.String()), slog.String("size", internalS3.FormatBytes(int64(len(file)))))
	return image, nil
}
