package general_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionhouse/adapters/memory"
	"auctionhouse/auction"
	"auctionhouse/general"
	"auctionhouse/models"
)

func newService(opts ...general.Option) (*general.Service, *memory.DB) {
	db := memory.NewDB()
	return general.NewService(memory.NewSiteDetailRepository(db), memory.NewSubscriberRepository(db), memory.NewLocker(), opts...), db
}

func TestService_SiteDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("第一次讀取時建立預設值", func(t *testing.T) {
		service, db := newService()
		detail, err := service.SiteDetail(ctx)
		require.NoError(t, err)
		assert.Equal(t, general.DefaultSiteDetail().Name, detail.Name)

		stored, err := memory.NewSiteDetailRepository(db).Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, detail.ID, stored.ID)
	})

	t.Run("同時讀取只建立一筆", func(t *testing.T) {
		service, _ := newService(general.WithSiteDefaults(models.SiteDetail{Name: "Custom"}))
		ids := make(chan string, 8)
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				detail, err := service.SiteDetail(ctx)
				assert.NoError(t, err)
				assert.Equal(t, "Custom", detail.Name)
				ids <- detail.ID.String()
			}()
		}
		wg.Wait()
		close(ids)
		unique := map[string]struct{}{}
		for id := range ids {
			unique[id] = struct{}{}
		}
		assert.Len(t, unique, 1)
	})
}

func TestService_Subscribe(t *testing.T) {
	ctx := context.Background()
	service, _ := newService()

	first, err := service.Subscribe(ctx, " Reader@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", first.Email)
	assert.False(t, first.Exported)

	again, err := service.Subscribe(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

type failingSubscribers struct{ err error }

func (f failingSubscribers) GetByEmail(context.Context, string) (models.Subscriber, error) {
	return models.Subscriber{}, f.err
}

func (f failingSubscribers) Create(context.Context, *models.Subscriber) error {
	return f.err
}

func TestService_Subscribe_Errors(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDB()
	boom := errors.New("boom")
	tests := []struct {
		name     string
		err      error
		wantKind auction.Kind
	}{
		{name: "儲存層錯誤", err: boom, wantKind: auction.KindInternal},
		{name: "逾時", err: context.DeadlineExceeded, wantKind: auction.KindTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := general.NewService(memory.NewSiteDetailRepository(db), failingSubscribers{err: tt.err}, memory.NewLocker())
			_, err := service.Subscribe(ctx, "a@example.com")
			require.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.wantKind, auction.KindOf(err))
		})
	}
}
