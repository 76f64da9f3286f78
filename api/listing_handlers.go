package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"auctionhouse/adapters/session"
	"auctionhouse/auction"
	"auctionhouse/auth"
)

type quantityQuery struct {
	Quantity int `form:"quantity" binding:"omitempty,min=1"`
}

type placeBidRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

type watchlistRequest struct {
	Slug string `json:"slug" binding:"required"`
}

func bindQuantity(c *gin.Context) (int, bool) {
	var query quantityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		failure(c, http.StatusUnprocessableEntity, "Invalid entry", map[string]string{"quantity": "value is not a valid positive integer"})
		return 0, false
	}
	return query.Quantity, true
}

// maxAmount 是 numeric(10,2) 欄位無法容納的最小值
var maxAmount = decimal.NewFromInt(100_000_000)

// validAmount 金額必須是最多兩位小數的正數，且小於 maxAmount
func validAmount(c *gin.Context, field string, amount decimal.Decimal) bool {
	switch {
	case !amount.IsPositive() || !amount.Equal(amount.Round(2)):
		failure(c, http.StatusUnprocessableEntity, "Invalid entry", map[string]string{field: "ensure this value is positive with at most 2 decimal places"})
		return false
	case amount.GreaterThanOrEqual(maxAmount):
		failure(c, http.StatusUnprocessableEntity, "Invalid entry", map[string]string{field: "ensure this value is less than 100000000"})
		return false
	}
	return true
}

// Retrieve all listings
// (GET /api/v1/listings)
func (impl *ServerImpl) GetListings(c *gin.Context) {
	const op = "GetListings"
	quantity, ok := bindQuantity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	views, err := impl.listings.List(ctx, session.GetClient(c), quantity)
	if err != nil {
		handleError(c, op, err)
		return
	}
	data, err := impl.newPresenter().listings(ctx, views, true)
	if err != nil {
		handleError(c, op, err)
		return
	}
	success(c, http.StatusOK, "Listings fetched", data)
}

// Retrieve listing's detail
// (GET /api/v1/listings/detail/{slug})
func (impl *ServerImpl) GetListingDetail(c *gin.Context) {
	const op = "GetListingDetail"
	ctx := c.Request.Context()
	view, related, err := impl.listings.Detail(ctx, session.GetClient(c), c.Param("slug"))
	if err != nil {
		handleError(c, op, err)
		return
	}
	p := impl.newPresenter()
	listing, err := p.listing(ctx, view, true)
	if err != nil {
		handleError(c, op, err)
		return
	}
	relatedData, err := p.listings(ctx, related, false)
	if err != nil {
		handleError(c, op, err)
		return
	}
	success(c, http.StatusOK, "Listing details fetched", listingDetailData{Listing: listing, RelatedListings: relatedData})
}

// Retrieve at most 3 bids of a listing
// (GET /api/v1/listings/detail/{slug}/bids)
func (impl *ServerImpl) GetListingBids(c *gin.Context) {
	const op = "GetListingBids"
	ctx := c.Request.Context()
	listing, bids, err := impl.bids.ListBids(ctx, c.Param("slug"), auction.PublicBidsLimit)
	if err != nil {
		handleError(c, op, err)
		return
	}
	data, err := impl.newPresenter().bids(ctx, listing, bids)
	if err != nil {
		handleError(c, op, err)
		return
	}
	success(c, http.StatusOK, "Listing Bids fetched", data)
}

// Add a bid to a listing
// (POST /api/v1/listings/detail/{slug}/bids)
func (impl *ServerImpl) PostListingBid(c *gin.Context) {
	const op = "PostListingBid"
	var req placeBidRequest
	if !bindJSON(c, &req) || !validAmount(c, "amount", *req.Amount) {
		return
	}
	ctx := c.Request.Context()
	user, _ := session.GetUser(c)
	bid, err := impl.bids.PlaceBid(ctx, auth.AuthenticatedUserOf(user), auction.PlaceBidCommand{
		ListingSlug: c.Param("slug"),
		Amount:      *req.Amount,
	})
	if err != nil {
		handleError(c, op, err)
		return
	}
	data, err := impl.newPresenter().bid(ctx, bid)
	if err != nil {
		handleError(c, op, err)
		return
	}
	success(c, http.StatusCreated, "Bid added to listing", data)
}

// Retrieve all listings in the client's watchlist
// (GET /api/v1/listings/watchlist)
func (impl *ServerImpl) GetWatchlist(c *gin.Context) {
	const op = "GetWatchlist"
	ctx := c.Request.Context()
	views, err := impl.listings.ListWatched(ctx, session.GetClient(c))
	if err != nil {
		handleError(c, op, err)
		return
	}
	data, err := impl.newPresenter().listings(ctx, views, true)
	if err != nil {
		handleError(c, op, err)
		return
	}
	success(c, http.StatusOK, "Watchlists Listings fetched", data)
}

// Add or remove a listing from the client's watchlist
// (POST /api/v1/listings/watchlist)
func (impl *ServerImpl) PostWatchlist(c *gin.Context) {
	const op = "PostWatchlist"
	var req watchlistRequest
	if !bindJSON(c, &req) {
		return
	}
	client := session.GetClient(c)
	result, err := impl.watchlist.Toggle(c.Request.Context(), client, req.Slug)
	if err != nil {
		handleError(c, op, err)
		return
	}
	guestID := result.GuestID
	if guest, ok := client.(auction.GuestUser); ok {
		guestID = guest.ID
	}
	var data gin.H
	if guestID != "" {
		c.Header(impl.guestHeader(), guestID)
		data = gin.H{"guestuser_id": guestID}
	}
	if result.Added {
		success(c, http.StatusCreated, "Listing added to user watchlist", data)
		return
	}
	success(c, http.StatusOK, "Listing removed from user watchlist", data)
}

// Retrieve all categories
// (GET /api/v1/listings/categories)
func (impl *ServerImpl) GetCategories(c *gin.Context) {
	const op = "GetCategories"
	categories, err := impl.listings.Categories(c.Request.Context())
	if err != nil {
		handleError(c, op, err)
		return
	}
	data := make([]categoryData, 0, len(categories))
	for _, category := range categories {
		data = append(data, categoryOf(category))
	}
	success(c, http.StatusOK, "Categories fetched", data)
}

// Retrieve all listings in a category, slug "other" means no category
// (GET /api/v1/listings/categories/{slug})
func (impl *ServerImpl) GetCategoryListings(c *gin.Context) {
	const op = "GetCategoryListings"
	ctx := c.Request.Context()
	views, err := impl.listings.ListByCategory(ctx, session.GetClient(c), c.Param("slug"))
	if err != nil {
		handleError(c, op, err)
		return
	}
	data, err := impl.newPresenter().listings(ctx, views, true)
	if err != nil {
		handleError(c, op, err)
		return
	}
	success(c, http.StatusOK, "Category Listings fetched", data)
}
