package memory

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"auctionhouse/media"
	"auctionhouse/models"
)

type ImageRepository struct {
	session
}

var _ media.ImageRepository = (*ImageRepository)(nil)

func NewImageRepository(db *DB) *ImageRepository {
	return &ImageRepository{session{db: db}}
}

func (r *ImageRepository) CountSince(ctx context.Context, uploaderID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.read(ctx, func() {
		for _, image := range r.db.images {
			if image.UploaderID == uploaderID && image.CreatedAt.After(since) {
				count++
			}
		}
	})
	return count, err
}

func (r *ImageRepository) Create(ctx context.Context, image *models.Image) error {
	if err := image.BeforeCreate(nil); err != nil {
		return err
	}
	return r.write(ctx, func() error {
		image.CreatedAt = r.db.now()
		r.db.images[image.ID] = *image
		return nil
	})
}

// BlobStore 把檔案保存在記憶體中，回傳以 baseURL 為前綴的網址
type BlobStore struct {
	mu      sync.RWMutex
	baseURL *url.URL
	blobs   map[string][]byte
}

var _ media.Uploader = (*BlobStore)(nil)

func NewBlobStore(baseURL string) (*BlobStore, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("fail to parse base url, err=%w", err)
	}
	return &BlobStore{baseURL: u, blobs: make(map[string][]byte)}, nil
}

func (b *BlobStore) Upload(ctx context.Context, key, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.mu.Lock()
	b.blobs[key] = append([]byte(nil), data...)
	b.mu.Unlock()
	return b.baseURL.JoinPath(key).String(), nil
}

// Get 取得已上傳的檔案
func (b *BlobStore) Get(key string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.blobs[key]
	return data, ok
}
