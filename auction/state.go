package auction

import (
	"time"

	"github.com/shopspring/decimal"

	"auctionhouse/models"
)

// BidStats 是拍賣品出價的統計資料
type BidStats struct {
	Highest decimal.Decimal
	Count   int64
}

// StatsOf 從出價集合計算統計資料
func StatsOf(bids []models.Bid) BidStats {
	stats := BidStats{Highest: decimal.Zero}
	for _, bid := range bids {
		if bid.Amount.GreaterThan(stats.Highest) {
			stats.Highest = bid.Amount
		}
		stats.Count++
	}
	return stats
}

// State 是拍賣品在某個時間點的衍生狀態，每次讀取時重新計算
type State struct {
	TimeLeftSeconds float64
	Active          bool
	HighestBid      decimal.Decimal
	BidsCount       int64
}

// Calculate 計算拍賣品在 now 時的狀態
// TimeLeftSeconds 可能是負數，Active 只有在儲存的旗標為 true 且尚未截止時才成立
func Calculate(listing models.Listing, stats BidStats, now time.Time) State {
	left := listing.ClosingDate.Sub(now).Seconds()
	return State{
		TimeLeftSeconds: left,
		Active:          listing.Active && left > 0,
		HighestBid:      stats.Highest,
		BidsCount:       stats.Count,
	}
}

// TimeLeft 是顯示用的剩餘秒數，手動關閉的拍賣品一律為 0
func (s State) TimeLeft() float64 {
	if !s.Active {
		return 0
	}
	return s.TimeLeftSeconds
}
