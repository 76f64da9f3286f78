package models

import (
	"github.com/google/uuid"
)

// newID 產生時間排序的 UUID (v7)，對齊資料庫端 uuid_generate_v7 的行為
func newID(id *uuid.UUID) error {
	if *id != uuid.Nil {
		return nil
	}
	v, err := uuid.NewV7()
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// All 回傳所有需要建立資料表的模型，順序依照外鍵相依
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Listing{},
		&Bid{},
		&WatchlistEntry{},
		&TokenPair{},
		&Image{},
		&SiteDetail{},
		&Subscriber{},
	}
}
