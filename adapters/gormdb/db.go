// Package gormdb 以 gorm 實作核心邏輯與身分驗證需要的儲存庫
package gormdb

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"auctionhouse/auction"
	"auctionhouse/models"
)

type Config struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
	Schema   string
}

func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s", c.User, c.Password, c.Host, c.Port, c.Database, c.Schema)
}

// OpenPostgres 連線到 postgres，資料表名稱加上 schema 前綴
func OpenPostgres(config Config) (*gorm.DB, error) {
	return Open(postgres.Open(config.DSN()), config.Schema)
}

// Open 以指定的 dialector 開啟連線，tablePrefix 為空時不加前綴
func Open(dialector gorm.Dialector, tablePrefix string) (*gorm.DB, error) {
	const op = "Open"
	naming := schema.NamingStrategy{}
	if tablePrefix != "" {
		naming.TablePrefix = tablePrefix + "."
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NamingStrategy: naming,
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}
	return db, nil
}

// Migrate 建立或更新所有資料表，正式環境的 schema 由 atlas 管理
func Migrate(db *gorm.DB) error {
	const op = "Migrate"
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("[%s] Fail to migrate, err=%w", op, err)
	}
	return nil
}

// translate 把 gorm 的錯誤轉為核心邏輯的錯誤分類，其他錯誤原樣回傳
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return auction.NotFoundf("%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return auction.Conflictf("%s already exists", what)
	default:
		return err
	}
}
