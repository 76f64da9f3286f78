package auction_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"auctionhouse/auction"
	"auctionhouse/models"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name         string
		active       bool
		closingIn    time.Duration
		stats        auction.BidStats
		wantActive   bool
		wantTimeLeft float64
		wantHighest  decimal.Decimal
	}{
		{
			name:         "進行中沒有出價",
			active:       true,
			closingIn:    time.Hour,
			wantActive:   true,
			wantTimeLeft: 3600,
			wantHighest:  decimal.Zero,
		},
		{
			name:         "進行中有出價",
			active:       true,
			closingIn:    time.Minute,
			stats:        auction.BidStats{Highest: amount(150), Count: 2},
			wantActive:   true,
			wantTimeLeft: 60,
			wantHighest:  amount(150),
		},
		{
			name:         "已過截止時間",
			active:       true,
			closingIn:    -time.Minute,
			wantActive:   false,
			wantTimeLeft: 0,
			wantHighest:  decimal.Zero,
		},
		{
			name:         "剛好截止",
			active:       true,
			closingIn:    0,
			wantActive:   false,
			wantTimeLeft: 0,
			wantHighest:  decimal.Zero,
		},
		{
			name:         "手動關閉",
			active:       false,
			closingIn:    time.Hour,
			wantActive:   false,
			wantTimeLeft: 0,
			wantHighest:  decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing := models.Listing{Active: tt.active, ClosingDate: baseTime.Add(tt.closingIn)}
			state := auction.Calculate(listing, tt.stats, baseTime)
			assert.Equal(t, tt.wantActive, state.Active)
			assert.Equal(t, tt.wantTimeLeft, state.TimeLeft())
			assert.True(t, tt.wantHighest.Equal(state.HighestBid))
			assert.Equal(t, tt.stats.Count, state.BidsCount)
			assert.Equal(t, tt.closingIn.Seconds(), state.TimeLeftSeconds)
		})
	}
}

func TestStatsOf(t *testing.T) {
	stats := auction.StatsOf([]models.Bid{{Amount: amount(100)}, {Amount: amount(250)}, {Amount: amount(120)}})
	assert.True(t, stats.Highest.Equal(amount(250)))
	assert.EqualValues(t, 3, stats.Count)

	empty := auction.StatsOf(nil)
	assert.True(t, empty.Highest.IsZero())
	assert.EqualValues(t, 0, empty.Count)
}
