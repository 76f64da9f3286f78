package api

import "time"

const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

type ServerConfig struct {
	// StoreBackend 決定資料存放位置，memory 模式下不需要 postgres、redis 與 s3
	StoreBackend string
	// GuestHeader 是訪客身分所在的 header
	GuestHeader string
	// RequestTimeout 是每個 API 請求的處理時限，0 代表不限制
	RequestTimeout time.Duration

	Auth  AuthConfig
	S3    S3Config
	DB    DBConfig
	Redis RedisConfig
}

type AuthConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	OTPTTL     time.Duration
}

type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Bucket          string
	PublicBaseURL   string
	// RateLimitPerHour 是每個使用者每小時可以上傳的圖片數量
	RateLimitPerHour int64
}

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
	Schema   string
	// AutoMigrate 啟動時以 gorm 建立資料表，正式環境應使用 atlas 管理
	AutoMigrate bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	KeyPrefix  string
	GuestTTL   time.Duration
	LockExpiry time.Duration
	// GuestCleanupInterval 是清除過期訪客關注紀錄的間隔，0 代表不清除
	GuestCleanupInterval time.Duration
}
