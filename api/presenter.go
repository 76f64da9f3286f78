package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"auctionhouse/auction"
	"auctionhouse/models"
)

type userData struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

type listingData struct {
	Name            string    `json:"name"`
	Auctioneer      userData  `json:"auctioneer"`
	Slug            string    `json:"slug"`
	Desc            string    `json:"desc"`
	Category        string    `json:"category"`
	Price           string    `json:"price"`
	ClosingDate     time.Time `json:"closing_date"`
	TimeLeftSeconds int64     `json:"time_left_seconds"`
	Active          bool      `json:"active"`
	BidsCount       int64     `json:"bids_count"`
	HighestBid      string    `json:"highest_bid"`
	Image           *string   `json:"image"`
	Watchlist       *bool     `json:"watchlist,omitempty"`
}

type listingDetailData struct {
	Listing         listingData   `json:"listing"`
	RelatedListings []listingData `json:"related_listings"`
}

type bidData struct {
	ID        string    `json:"id"`
	User      userData  `json:"user"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type bidsData struct {
	Listing string    `json:"listing"`
	Bids    []bidData `json:"bids"`
}

type categoryData struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type profileData struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Avatar    *string `json:"avatar"`
}

type tokensData struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type imageData struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalURL(url string) *string {
	if url == "" {
		return nil
	}
	return lo.ToPtr(url)
}

func profileOf(user models.User) profileData {
	return profileData{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Avatar:    optionalURL(user.AvatarURL),
	}
}

func categoryOf(category models.Category) categoryData {
	return categoryData{Name: category.Name, Slug: category.Slug}
}

// presenter 把核心邏輯的結果轉成回應格式，並快取同一個請求中查過的使用者與分類
type presenter struct {
	impl       *ServerImpl
	users      map[uuid.UUID]userData
	categories map[uuid.UUID]models.Category
}

func (impl *ServerImpl) newPresenter() *presenter {
	return &presenter{impl: impl, users: map[uuid.UUID]userData{}}
}

func (p *presenter) user(ctx context.Context, id uuid.UUID) (userData, error) {
	if data, ok := p.users[id]; ok {
		return data, nil
	}
	data := userData{ID: id.String()}
	user, err := p.impl.accounts.Profile(ctx, id)
	if err != nil && !errors.Is(err, auction.ErrNotFound) {
		return userData{}, err
	}
	if err == nil {
		data.Name = user.FullName()
		data.Avatar = optionalURL(user.AvatarURL)
	}
	p.users[id] = data
	return data, nil
}

func (p *presenter) category(ctx context.Context, id *uuid.UUID) (string, error) {
	if id == nil {
		return "Other", nil
	}
	if p.categories == nil {
		categories, err := p.impl.listings.Categories(ctx)
		if err != nil {
			return "", err
		}
		p.categories = lo.KeyBy(categories, func(c models.Category) uuid.UUID { return c.ID })
	}
	if category, ok := p.categories[*id]; ok {
		return category.Name, nil
	}
	return "Other", nil
}

func (p *presenter) listing(ctx context.Context, view auction.ListingView, withWatch bool) (listingData, error) {
	auctioneer, err := p.user(ctx, view.Listing.AuctioneerID)
	if err != nil {
		return listingData{}, fmt.Errorf("fail to find auctioneer, err=%w", err)
	}
	category, err := p.category(ctx, view.Listing.CategoryID)
	if err != nil {
		return listingData{}, fmt.Errorf("fail to find category, err=%w", err)
	}
	data := listingData{
		Name:            view.Listing.Name,
		Auctioneer:      auctioneer,
		Slug:            view.Listing.Slug,
		Desc:            view.Listing.Description,
		Category:        category,
		Price:           money(view.Listing.Price),
		ClosingDate:     view.Listing.ClosingDate.UTC(),
		TimeLeftSeconds: int64(view.State.TimeLeft()),
		Active:          view.State.Active,
		BidsCount:       view.State.BidsCount,
		HighestBid:      money(view.State.HighestBid),
		Image:           optionalURL(view.Listing.ImageURL),
	}
	if withWatch {
		data.Watchlist = lo.ToPtr(view.Watched)
	}
	return data, nil
}

func (p *presenter) listings(ctx context.Context, views []auction.ListingView, withWatch bool) ([]listingData, error) {
	result := make([]listingData, 0, len(views))
	for _, view := range views {
		data, err := p.listing(ctx, view, withWatch)
		if err != nil {
			return nil, err
		}
		result = append(result, data)
	}
	return result, nil
}

func (p *presenter) bid(ctx context.Context, bid models.Bid) (bidData, error) {
	user, err := p.user(ctx, bid.UserID)
	if err != nil {
		return bidData{}, fmt.Errorf("fail to find bidder, err=%w", err)
	}
	return bidData{
		ID:        bid.ID.String(),
		User:      user,
		Amount:    money(bid.Amount),
		CreatedAt: bid.CreatedAt.UTC(),
		UpdatedAt: bid.UpdatedAt.UTC(),
	}, nil
}

func (p *presenter) bids(ctx context.Context, listing models.Listing, bids []models.Bid) (bidsData, error) {
	result := bidsData{Listing: listing.Name, Bids: make([]bidData, 0, len(bids))}
	for _, bid := range bids {
		data, err := p.bid(ctx, bid)
		if err != nil {
			return bidsData{}, err
		}
		result.Bids = append(result.Bids, data)
	}
	return result, nil
}
