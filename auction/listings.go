package auction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"auctionhouse/models"
)

// RelatedListingsLimit 是拍賣品詳細資料中最多附帶的相關拍賣品數量
const RelatedListingsLimit = 3

// ListingView 是拍賣品加上讀取當下計算出的狀態
type ListingView struct {
	Listing models.Listing
	State   State
	// Watched 代表目前的 client 是否關注這個拍賣品
	Watched bool
}

type CreateListingCommand struct {
	Name        string
	Description string
	// Category 是分類的 slug，"other" 代表沒有分類
	Category    string
	Price       decimal.Decimal
	ClosingDate time.Time
	ImageURL    string
}

// UpdateListingCommand 中為 nil 的欄位不會被更新
type UpdateListingCommand struct {
	Name        *string
	Description *string
	Category    *string
	Price       *decimal.Decimal
	ClosingDate *time.Time
	Active      *bool
	ImageURL    *string
}

// ListingService 負責拍賣品的瀏覽與拍賣者對自己拍賣品的管理
type ListingService struct {
	store Store
	now   func() time.Time
}

type ListingServiceOption func(*ListingService)

// WithListingClock 設定取得目前時間的函數
func WithListingClock(now func() time.Time) ListingServiceOption {
	return func(s *ListingService) {
		s.now = now
	}
}

func NewListingService(store Store, opts ...ListingServiceOption) *ListingService {
	s := &ListingService{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List 列出所有拍賣品，quantity > 0 時只取前 quantity 筆
func (s *ListingService) List(ctx context.Context, client Client, quantity int) ([]ListingView, error) {
	const op = "ListListings"
	listings, err := s.store.Listings().List(ctx, ListingFilter{Limit: quantity})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to list listings, err=%w", op, err)
	}
	return s.views(ctx, client, listings)
}

// ListByCategory 列出分類下的拍賣品，slug 為 "other" 時列出沒有分類的拍賣品
func (s *ListingService) ListByCategory(ctx context.Context, client Client, slug string) ([]ListingView, error) {
	const op = "ListByCategory"
	filter := ListingFilter{NoCategory: true}
	if slug != models.CategorySlugOther {
		category, err := s.store.Categories().GetBySlug(ctx, slug)
		if errors.Is(err, ErrNotFound) {
			return nil, newError(KindNotFound, "Invalid category")
		}
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to find category, err=%w", op, err)
		}
		filter = ListingFilter{CategoryID: &category.ID}
	}
	listings, err := s.store.Listings().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to list listings, err=%w", op, err)
	}
	return s.views(ctx, client, listings)
}

// Detail 取得拍賣品的詳細資料以及同分類的相關拍賣品
func (s *ListingService) Detail(ctx context.Context, client Client, slug string) (ListingView, []ListingView, error) {
	const op = "ListingDetail"
	listing, err := s.store.Listings().GetBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return ListingView{}, nil, newError(KindNotFound, "Listing does not exist!")
	}
	if err != nil {
		return ListingView{}, nil, fmt.Errorf("[%s] Fail to find listing, err=%w", op, err)
	}
	filter := ListingFilter{
		CategoryID: listing.CategoryID,
		NoCategory: listing.CategoryID == nil,
		ExcludeID:  &listing.ID,
		Limit:      RelatedListingsLimit,
	}
	related, err := s.store.Listings().List(ctx, filter)
	if err != nil {
		return ListingView{}, nil, fmt.Errorf("[%s] Fail to list related listings, err=%w", op, err)
	}
	views, err := s.views(ctx, client, append([]models.Listing{listing}, related...))
	if err != nil {
		return ListingView{}, nil, err
	}
	return views[0], views[1:], nil
}

// ListWatched 列出 client 關注的拍賣品，Anonymous 永遠是空的
func (s *ListingService) ListWatched(ctx context.Context, client Client) ([]ListingView, error) {
	const op = "ListWatched"
	owner, ok := OwnerOf(client)
	if !ok {
		return []ListingView{}, nil
	}
	entries, err := s.store.Watchlist().ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to list watchlist, err=%w", op, err)
	}
	listings := make([]models.Listing, 0, len(entries))
	for _, entry := range entries {
		listing, err := s.store.Listings().GetByID(ctx, entry.ListingID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to find listing, err=%w", op, err)
		}
		listings = append(listings, listing)
	}
	return s.views(ctx, client, listings)
}

func (s *ListingService) Categories(ctx context.Context) ([]models.Category, error) {
	const op = "Categories"
	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to list categories, err=%w", op, err)
	}
	return categories, nil
}

// ListByAuctioneer 列出使用者自己的拍賣品
func (s *ListingService) ListByAuctioneer(ctx context.Context, user AuthenticatedUser, quantity int) ([]ListingView, error) {
	const op = "ListByAuctioneer"
	listings, err := s.store.Listings().List(ctx, ListingFilter{AuctioneerID: &user.ID, Limit: quantity})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to list listings, err=%w", op, err)
	}
	return s.views(ctx, user, listings)
}

// Create 建立新的拍賣品，slug 由名稱加上隨機後綴產生
func (s *ListingService) Create(ctx context.Context, user AuthenticatedUser, cmd CreateListingCommand) (models.Listing, error) {
	const op = "CreateListing"
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return models.Listing{}, newError(KindInvalidInput, "Listing name is required")
	}
	if !cmd.Price.IsPositive() {
		return models.Listing{}, newError(KindInvalidInput, "Price must be greater than zero")
	}
	if !cmd.ClosingDate.After(s.now()) {
		return models.Listing{}, newError(KindInvalidInput, "Closing date must be in the future")
	}
	categoryID, err := s.categoryID(ctx, cmd.Category)
	if err != nil {
		return models.Listing{}, err
	}
	listing := models.Listing{
		AuctioneerID: user.ID,
		Name:         name,
		Slug:         newSlug(name),
		Description:  cmd.Description,
		CategoryID:   categoryID,
		Price:        cmd.Price.Round(2),
		ClosingDate:  cmd.ClosingDate,
		Active:       true,
		ImageURL:     cmd.ImageURL,
	}
	if err := s.store.Listings().Create(ctx, &listing); err != nil {
		return models.Listing{}, fmt.Errorf("[%s] Fail to create listing, err=%w", op, err)
	}
	return listing, nil
}

// Update 更新使用者自己的拍賣品
func (s *ListingService) Update(ctx context.Context, user AuthenticatedUser, slug string, cmd UpdateListingCommand) (models.Listing, error) {
	const op = "UpdateListing"
	listing, err := s.store.Listings().GetBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return models.Listing{}, newError(KindNotFound, "Listing does not exist!")
	}
	if err != nil {
		return models.Listing{}, fmt.Errorf("[%s] Fail to find listing, err=%w", op, err)
	}
	if listing.AuctioneerID != user.ID {
		return models.Listing{}, newError(KindForbidden, "This listing doesn't belong to you!")
	}
	if cmd.Name != nil && strings.TrimSpace(*cmd.Name) != "" {
		listing.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Description != nil && *cmd.Description != "" {
		listing.Description = *cmd.Description
	}
	if cmd.Category != nil && *cmd.Category != "" {
		if listing.CategoryID, err = s.categoryID(ctx, *cmd.Category); err != nil {
			return models.Listing{}, err
		}
	}
	if cmd.Price != nil {
		if !cmd.Price.IsPositive() {
			return models.Listing{}, newError(KindInvalidInput, "Price must be greater than zero")
		}
		listing.Price = cmd.Price.Round(2)
	}
	if cmd.ClosingDate != nil {
		if !cmd.ClosingDate.After(s.now()) {
			return models.Listing{}, newError(KindInvalidInput, "Closing date must be in the future")
		}
		listing.ClosingDate = *cmd.ClosingDate
	}
	if cmd.Active != nil {
		listing.Active = *cmd.Active
	}
	if cmd.ImageURL != nil && *cmd.ImageURL != "" {
		listing.ImageURL = *cmd.ImageURL
	}
	if err := s.store.Listings().Update(ctx, &listing); err != nil {
		return models.Listing{}, fmt.Errorf("[%s] Fail to update listing, err=%w", op, err)
	}
	return listing, nil
}

func (s *ListingService) categoryID(ctx context.Context, slug string) (*uuid.UUID, error) {
	if slug == "" || slug == models.CategorySlugOther {
		return nil, nil
	}
	category, err := s.store.Categories().GetBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return nil, newError(KindInvalidInput, "Invalid category")
	}
	if err != nil {
		return nil, fmt.Errorf("fail to find category, err=%w", err)
	}
	return &category.ID, nil
}

// views 計算每個拍賣品的狀態以及 client 是否關注
func (s *ListingService) views(ctx context.Context, client Client, listings []models.Listing) ([]ListingView, error) {
	ids := lo.Map(listings, func(l models.Listing, _ int) uuid.UUID { return l.ID })
	stats, err := s.store.Listings().Stats(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fail to load bid stats, err=%w", err)
	}
	watched := map[uuid.UUID]struct{}{}
	if owner, ok := OwnerOf(client); ok {
		entries, err := s.store.Watchlist().ListByOwner(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("fail to list watchlist, err=%w", err)
		}
		for _, entry := range entries {
			watched[entry.ListingID] = struct{}{}
		}
	}
	now := s.now()
	views := make([]ListingView, len(listings))
	for i, listing := range listings {
		_, isWatched := watched[listing.ID]
		views[i] = ListingView{
			Listing: listing,
			State:   Calculate(listing, stats[listing.ID], now),
			Watched: isWatched,
		}
	}
	return views, nil
}

// newSlug 將名稱轉為小寫並以 "-" 連接英數字，再加上隨機後綴避免重複
func newSlug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	base := strings.TrimSuffix(b.String(), "-")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
