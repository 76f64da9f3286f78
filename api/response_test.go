package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionhouse/auction"
	"auctionhouse/auth"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "NotFound", err: auction.NotFoundf("Listing does not exist!"), wantCode: http.StatusNotFound, wantMsg: "Listing does not exist!"},
		{name: "Forbidden", err: &auction.Error{Kind: auction.KindForbidden, Message: "nope"}, wantCode: http.StatusForbidden, wantMsg: "nope"},
		{name: "Closed", err: &auction.Error{Kind: auction.KindClosed, Message: "This auction is closed!"}, wantCode: http.StatusGone, wantMsg: "This auction is closed!"},
		{name: "InvalidAmount", err: &auction.Error{Kind: auction.KindInvalidAmount, Message: "low"}, wantCode: http.StatusBadRequest, wantMsg: "low"},
		{name: "Conflict", err: auth.ErrEmailTaken, wantCode: http.StatusConflict, wantMsg: "Email already registered!"},
		{name: "Unauthorized", err: auth.ErrInvalidCredentials, wantCode: http.StatusUnauthorized, wantMsg: "Invalid credentials"},
		{name: "RateLimited", err: &auction.Error{Kind: auction.KindRateLimited, Message: "slow down"}, wantCode: http.StatusTooManyRequests, wantMsg: "slow down"},
		{name: "包裝過的業務錯誤", err: fmt.Errorf("[op] Fail to x, err=%w", auction.NotFoundf("gone")), wantCode: http.StatusNotFound, wantMsg: "gone"},
		{name: "逾時", err: fmt.Errorf("[op] Fail to x, err=%w", context.DeadlineExceeded), wantCode: http.StatusServiceUnavailable, wantMsg: "Service temporarily unavailable, try again later"},
		{name: "非預期的錯誤不回傳細節", err: errors.New("pq: password authentication failed"), wantCode: http.StatusInternalServerError, wantMsg: "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			handleError(c, "test", tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, Response{Status: "failure", Message: tt.wantMsg}, body)
		})
	}
}
