package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionhouse/models"
)

type siteDetailData struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Fb      string `json:"fb"`
	Tw      string `json:"tw"`
	Wh      string `json:"wh"`
	Ig      string `json:"ig"`
}

type subscriberData struct {
	Email string `json:"email"`
}

func siteDetailOf(detail models.SiteDetail) siteDetailData {
	return siteDetailData{
		Name:    detail.Name,
		Email:   detail.Email,
		Phone:   detail.Phone,
		Address: detail.Address,
		Fb:      detail.Facebook,
		Tw:      detail.Twitter,
		Wh:      detail.WhatsApp,
		Ig:      detail.Instagram,
	}
}

// Retrieve site details
// (GET /api/v1/general/site-detail)
func (impl *ServerImpl) GetSiteDetail(c *gin.Context) {
	const op = "GetSiteDetail"
	detail, err := impl.general.SiteDetail(c.Request.Context())
	if err != nil {
		handleError(c, op, err)
		return
	}
	success(c, http.StatusOK, "Site Details fetched", siteDetailOf(detail))
}

// Add a newsletter subscriber
// (POST /api/v1/general/subscribe)
func (impl *ServerImpl) PostSubscribe(c *gin.Context) {
	const op = "PostSubscribe"
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	subscriber, err := impl.general.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		handleError(c, op, err)
		return
	}
	success(c, http.StatusCreated, "Subscription successful", subscriberData{Email: subscriber.Email})
}
