package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"auctionhouse/auction"
	"auctionhouse/models"
)

type WatchlistRepository struct {
	session
}

func ownedBy(entry models.WatchlistEntry, owner auction.Owner) bool {
	if owner.UserID != nil {
		return entry.UserID != nil && *entry.UserID == *owner.UserID
	}
	return entry.SessionKey != nil && *entry.SessionKey == owner.SessionKey
}

func (r *WatchlistRepository) Find(ctx context.Context, owner auction.Owner, listingID uuid.UUID) (models.WatchlistEntry, error) {
	var (
		entry models.WatchlistEntry
		ok    bool
	)
	if err := r.read(ctx, func() {
		entry, ok = lo.Find(lo.Values(r.db.watchlist), func(e models.WatchlistEntry) bool {
			return e.ListingID == listingID && ownedBy(e, owner)
		})
	}); err != nil {
		return models.WatchlistEntry{}, err
	}
	if !ok {
		return models.WatchlistEntry{}, auction.NotFoundf("watchlist entry not found")
	}
	return entry, nil
}

func (r *WatchlistRepository) ListByOwner(ctx context.Context, owner auction.Owner) ([]models.WatchlistEntry, error) {
	var entries []models.WatchlistEntry
	if err := r.read(ctx, func() {
		entries = lo.Filter(lo.Values(r.db.watchlist), func(e models.WatchlistEntry, _ int) bool { return ownedBy(e, owner) })
	}); err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	return entries, nil
}

func (r *WatchlistRepository) Create(ctx context.Context, entry *models.WatchlistEntry) error {
	if (entry.UserID == nil) == (entry.SessionKey == nil) {
		return &auction.Error{Kind: auction.KindInvalidInput, Message: "watchlist entry needs exactly one owner"}
	}
	if err := entry.BeforeCreate(nil); err != nil {
		return err
	}
	owner := auction.Owner{UserID: entry.UserID, SessionKey: lo.FromPtr(entry.SessionKey)}
	return r.write(ctx, func() error {
		for _, e := range r.db.watchlist {
			if e.ListingID == entry.ListingID && ownedBy(e, owner) {
				return auction.Conflictf("listing already in watchlist")
			}
		}
		entry.CreatedAt = r.db.now()
		r.db.watchlist[entry.ID] = *entry
		return nil
	})
}

func (r *WatchlistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.write(ctx, func() error {
		if _, ok := r.db.watchlist[id]; !ok {
			return auction.NotFoundf("watchlist entry %s not found", id)
		}
		delete(r.db.watchlist, id)
		return nil
	})
}

func (r *WatchlistRepository) DeleteByOwner(ctx context.Context, owner auction.Owner) (int64, error) {
	var deleted int64
	err := r.write(ctx, func() error {
		for id, e := range r.db.watchlist {
			if ownedBy(e, owner) {
				delete(r.db.watchlist, id)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}

func (r *WatchlistRepository) GuestSessionKeys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := r.read(ctx, func() {
		for _, e := range r.db.watchlist {
			if e.SessionKey != nil {
				keys = append(keys, *e.SessionKey)
			}
		}
	}); err != nil {
		return nil, err
	}
	keys = lo.Uniq(keys)
	sort.Strings(keys)
	return keys, nil
}
