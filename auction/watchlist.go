package auction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"auctionhouse/models"
)

// ToggleResult 是切換關注狀態的結果
type ToggleResult struct {
	Added bool
	// GuestID 只在這次請求替匿名訪客建立新身分時有值，呼叫端需要把它交給客戶端
	GuestID string
}

// WatchlistService 處理關注清單的切換以及登入時訪客清單的合併
type WatchlistService struct {
	store  Store
	guests GuestRepository
	locker Locker
}

func NewWatchlistService(store Store, guests GuestRepository, locker Locker) *WatchlistService {
	return &WatchlistService{store: store, guests: guests, locker: locker}
}

// Toggle 切換 client 對拍賣品的關注狀態：已關注就移除，未關注就加入
// 沒有任何身分的訪客會在這裡建立新的訪客身分
func (s *WatchlistService) Toggle(ctx context.Context, client Client, slug string) (ToggleResult, error) {
	const op = "ToggleWatchlist"
	listing, err := s.store.Listings().GetBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return ToggleResult{}, newError(KindNotFound, "Listing does not exist!")
	}
	if err != nil {
		return ToggleResult{}, fmt.Errorf("[%s] Fail to find listing, err=%w", op, err)
	}

	var result ToggleResult
	owner, ok := OwnerOf(client)
	if !ok {
		guestID, err := s.guests.Create(ctx)
		if err != nil {
			return ToggleResult{}, fmt.Errorf("[%s] Fail to create guest, err=%w", op, err)
		}
		owner = GuestOwner(guestID)
		result.GuestID = guestID
	}

	lockCtx, unlock, err := s.locker.Lock(ctx, watchlistLockKey(owner))
	if err != nil {
		return ToggleResult{}, fmt.Errorf("[%s] Fail to acquire watchlist lock, err=%w", op, err)
	}
	defer unlock()

	// 登入合併會在持有同一把鎖時刪除訪客，鎖內再確認一次訪客仍然存在
	if guest, ok := client.(GuestUser); ok {
		exists, err := s.guests.Exists(lockCtx, guest.ID)
		if err != nil {
			return ToggleResult{}, fmt.Errorf("[%s] Fail to check guest, err=%w", op, err)
		}
		if !exists {
			unlock()
			return s.Toggle(ctx, Anonymous{Session: guest.ID}, slug)
		}
	}

	err = s.store.Transaction(lockCtx, func(tx Store) error {
		entry, err := tx.Watchlist().Find(lockCtx, owner, listing.ID)
		switch {
		case err == nil:
			result.Added = false
			return tx.Watchlist().Delete(lockCtx, entry.ID)
		case errors.Is(err, ErrNotFound):
			result.Added = true
			return tx.Watchlist().Create(lockCtx, newEntry(owner, listing))
		default:
			return err
		}
	})
	if err != nil {
		return ToggleResult{}, fmt.Errorf("[%s] Fail to toggle watchlist, err=%w", op, err)
	}
	return result, nil
}

func watchlistLockKey(owner Owner) string {
	return "watchlist:" + owner.String()
}

func newEntry(owner Owner, listing models.Listing) *models.WatchlistEntry {
	entry := &models.WatchlistEntry{ListingID: listing.ID}
	if owner.UserID != nil {
		id := *owner.UserID
		entry.UserID = &id
	} else {
		key := owner.SessionKey
		entry.SessionKey = &key
	}
	return entry
}

// MergeOnLogin 把訪客的關注清單移到登入的使用者底下，並刪除訪客身分
// 使用者已經關注的拍賣品會直接捨棄訪客的那筆紀錄
func (s *WatchlistService) MergeOnLogin(ctx context.Context, guestID string, user AuthenticatedUser) error {
	const op = "MergeOnLogin"
	if guestID == "" {
		return nil
	}
	guest := GuestOwner(guestID)
	target := UserOwner(user.ID)

	// 固定先鎖使用者再鎖訪客
	userCtx, unlockUser, err := s.locker.Lock(ctx, watchlistLockKey(target))
	if err != nil {
		return fmt.Errorf("[%s] Fail to acquire watchlist lock, err=%w", op, err)
	}
	defer unlockUser()
	lockCtx, unlockGuest, err := s.locker.Lock(userCtx, watchlistLockKey(guest))
	if err != nil {
		return fmt.Errorf("[%s] Fail to acquire guest watchlist lock, err=%w", op, err)
	}
	defer unlockGuest()

	moved := 0
	err = s.store.Transaction(lockCtx, func(tx Store) error {
		entries, err := tx.Watchlist().ListByOwner(lockCtx, guest)
		if err != nil {
			return fmt.Errorf("fail to list guest watchlist, err=%w", err)
		}
		for _, entry := range entries {
			_, err := tx.Watchlist().Find(lockCtx, target, entry.ListingID)
			if errors.Is(err, ErrNotFound) {
				if err := tx.Watchlist().Create(lockCtx, &models.WatchlistEntry{ListingID: entry.ListingID, UserID: target.UserID}); err != nil {
					return fmt.Errorf("fail to migrate watchlist entry, err=%w", err)
				}
				moved++
			} else if err != nil {
				return fmt.Errorf("fail to find user watchlist entry, err=%w", err)
			}
			if err := tx.Watchlist().Delete(lockCtx, entry.ID); err != nil {
				return fmt.Errorf("fail to delete guest watchlist entry, err=%w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("[%s] Fail to merge watchlist, err=%w", op, err)
	}
	if err := s.guests.Delete(lockCtx, guestID); err != nil {
		return fmt.Errorf("[%s] Fail to delete guest, err=%w", op, err)
	}
	slog.Info("Guest watchlist merged", slog.String("user", user.ID.String()), slog.Int("moved", moved))
	return nil
}

// PurgeExpiredGuests 刪除已經過期的訪客留下的關注紀錄，回傳被清除的訪客數量
func (s *WatchlistService) PurgeExpiredGuests(ctx context.Context) (int, error) {
	const op = "PurgeExpiredGuests"
	keys, err := s.store.Watchlist().GuestSessionKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("[%s] Fail to list guests, err=%w", op, err)
	}
	purged := 0
	for _, key := range keys {
		removed, err := s.purgeGuest(ctx, key)
		if err != nil {
			return purged, fmt.Errorf("[%s] Fail to purge guest, guest=%s, err=%w", op, key, err)
		}
		if removed > 0 {
			purged++
		}
	}
	return purged, nil
}

// purgeGuest 在訪客的鎖內確認身分已失效才刪除，避免和 Toggle 互相覆蓋
func (s *WatchlistService) purgeGuest(ctx context.Context, guestID string) (int64, error) {
	owner := GuestOwner(guestID)
	lockCtx, unlock, err := s.locker.Lock(ctx, watchlistLockKey(owner))
	if err != nil {
		return 0, err
	}
	defer unlock()
	exists, err := s.guests.Exists(lockCtx, guestID)
	if err != nil || exists {
		return 0, err
	}
	return s.store.Watchlist().DeleteByOwner(lockCtx, owner)
}

// RunGuestJanitor 每隔 interval 清除一次過期訪客的紀錄，直到 ctx 結束
func (s *WatchlistService) RunGuestJanitor(ctx context.Context, interval time.Duration) {
	logger := slog.With(slog.String("caller", "RunGuestJanitor"))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := s.PurgeExpiredGuests(ctx)
			if err != nil && ctx.Err() == nil {
				logger.Error("Fail to purge expired guests", slog.Any("error", err))
			}
			if purged > 0 {
				logger.Info("Expired guests purged", slog.Int("count", purged))
			}
		}
	}
}
