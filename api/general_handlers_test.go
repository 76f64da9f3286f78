package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auctionhouse/general"
)

func TestGetSiteDetail(t *testing.T) {
	s := newTestServer(t)

	res := s.do(t, request{method: http.MethodGet, path: "/api/v1/general/site-detail"})
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "Site Details fetched", res.body.Message)
	detail := decode[siteDetailData](t, res)
	defaults := general.DefaultSiteDetail()
	assert.Equal(t, defaults.Name, detail.Name)
	assert.Equal(t, defaults.WhatsApp, detail.Wh)

	// 第二次讀取拿到同一筆資料
	res = s.do(t, request{method: http.MethodGet, path: "/api/v1/general/site-detail"})
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, detail, decode[siteDetailData](t, res))
}

func TestPostSubscribe(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		body      map[string]any
		wantCode  int
		wantMsg   string
		wantEmail string
	}{
		{name: "新的訂閱者", body: map[string]any{"email": "Reader@Example.com"}, wantCode: http.StatusCreated, wantMsg: "Subscription successful", wantEmail: "reader@example.com"},
		{name: "重複訂閱", body: map[string]any{"email": "reader@example.com"}, wantCode: http.StatusCreated, wantMsg: "Subscription successful", wantEmail: "reader@example.com"},
		{name: "email 格式錯誤", body: map[string]any{"email": "not-an-email"}, wantCode: http.StatusUnprocessableEntity, wantMsg: "Invalid entry"},
		{name: "缺少 email", body: map[string]any{}, wantCode: http.StatusUnprocessableEntity, wantMsg: "Invalid entry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.do(t, request{method: http.MethodPost, path: "/api/v1/general/subscribe", body: tt.body})
			assert.Equal(t, tt.wantCode, res.code)
			assert.Equal(t, tt.wantMsg, res.body.Message)
			if tt.wantEmail != "" {
				assert.Equal(t, tt.wantEmail, decode[subscriberData](t, res).Email)
			}
		})
	}
}
