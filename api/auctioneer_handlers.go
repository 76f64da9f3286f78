package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"auctionhouse/adapters/session"
	"auctionhouse/auction"
	"auctionhouse/auth"
)

type updateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=50"`
	LastName  *string `json:"last_name" binding:"omitempty,max=50"`
	Avatar    *string `json:"avatar" binding:"omitempty,url"`
}

type createListingRequest struct {
	Name        string           `json:"name" binding:"required,max=70"`
	Desc        string           `json:"desc"`
	Category    string           `json:"category" binding:"required"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	ClosingDate *time.Time       `json:"closing_date" binding:"required"`
	Image       string           `json:"image" binding:"omitempty,url"`
}

type updateListingRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=70"`
	Desc        *string          `json:"desc"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	ClosingDate *time.Time       `json:"closing_date"`
	Active      *bool            `json:"active"`
	Image       *string          `json:"image" binding:"omitempty,url"`
}

// Get the current user's profile
// (GET /api/v1/auctioneer)
func (impl *ServerImpl) GetProfile(c *gin.Context) {
	user, _ := session.GetUser(c)
	success(c, http.StatusOK, "User details fetched!", profileOf(user))
}

// Update the current user's profile
// (PUT /api/v1/auctioneer)
func (impl *ServerImpl) PutProfile(c *gin.Context) {
	const op = "PutProfile"
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	user, _ := session.GetUser(c)
	updated, err := impl.accounts.UpdateProfile(c.Request.Context(), user.ID, auth.UpdateProfileCommand{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		AvatarURL: req.Avatar,
	})
	if err != nil {
		handleError(c, op, err)
		return
	}
	success(c, http.StatusOK, "User updated!", profileOf(updated))
}

// Retrieve all listings by the current user
// (GET /api/v1/auctioneer/listings)
func (impl *ServerImpl) GetAuctioneerListings(c *gin.Context) {
	const op = "GetAuctioneerListings"
	quantity, ok := bindQuantity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	user, _ := session.GetUser(c)
	views, err := impl.listings.ListByAuctioneer(ctx, auth.AuthenticatedUserOf(user), quantity)
	if err != nil {
		handleError(c, op, err)
		return
	}
	data, err := impl.newPresenter().listings(ctx, views, false)
	if err != nil {
		handleError(c, op, err)
		return
	}
	success(c, http.StatusOK, "Auctioneer Listings fetched", data)
}

// Create a listing
// (POST /api/v1/auctioneer/listings)
func (impl *ServerImpl) PostAuctioneerListing(c *gin.Context) {
	const op = "PostAuctioneerListing"
	var req createListingRequest
	if !bindJSON(c, &req) || !validAmount(c, "price", *req.Price) {
		return
	}
	ctx := c.Request.Context()
	user, _ := session.GetUser(c)
	owner := auth.AuthenticatedUserOf(user)
	listing, err := impl.listings.Create(ctx, owner, auction.CreateListingCommand{
		Name:        req.Name,
		Description: impl.htmlChecker.Sanitize(req.Desc),
		Category:    req.Category,
		Price:       *req.Price,
		ClosingDate: *req.ClosingDate,
		ImageURL:    req.Image,
	})
	if err != nil {
		handleError(c, op, err)
		return
	}
	impl.respondListing(c, op, http.StatusCreated, "Listing created successfully", listing.Slug, owner)
}

// Update a listing of the current user
// (PATCH /api/v1/auctioneer/listings/{slug})
func (impl *ServerImpl) PatchAuctioneerListing(c *gin.Context) {
	const op = "PatchAuctioneerListing"
	var req updateListingRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Price != nil && !validAmount(c, "price", *req.Price) {
		return
	}
	ctx := c.Request.Context()
	user, _ := session.GetUser(c)
	owner := auth.AuthenticatedUserOf(user)
	cmd := auction.UpdateListingCommand{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		ClosingDate: req.ClosingDate,
		Active:      req.Active,
		ImageURL:    req.Image,
	}
	if req.Desc != nil {
		cmd.Description = lo.ToPtr(impl.htmlChecker.Sanitize(*req.Desc))
	}
	listing, err := impl.listings.Update(ctx, owner, c.Param("slug"), cmd)
	if err != nil {
		handleError(c, op, err)
		return
	}
	impl.respondListing(c, op, http.StatusOK, "Listing updated successfully", listing.Slug, owner)
}

// respondListing 回應拍賣品當下的狀態
func (impl *ServerImpl) respondListing(c *gin.Context, op string, code int, message, slug string, client auction.Client) {
	ctx := c.Request.Context()
	view, _, err := impl.listings.Detail(ctx, client, slug)
	if err != nil {
		handleError(c, op, err)
		return
	}
	data, err := impl.newPresenter().listing(ctx, view, false)
	if err != nil {
		handleError(c, op, err)
		return
	}
	success(c, code, message, data)
}

// Retrieve all bids of a listing owned by the current user
// (GET /api/v1/auctioneer/listings/{slug}/bids)
func (impl *ServerImpl) GetAuctioneerListingBids(c *gin.Context) {
	const op = "GetAuctioneerListingBids"
	ctx := c.Request.Context()
	user, _ := session.GetUser(c)
	listing, bids, err := impl.bids.ListOwnListingBids(ctx, auth.AuthenticatedUserOf(user), c.Param("slug"))
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
