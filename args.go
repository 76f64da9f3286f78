package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"auctionhouse/api"
)

func ParseArgs() Args {
	// server config
	pflag.String("server-url", "0.0.0.0:8080", "")
	pflag.String("log-level", "info", "debug, info, warn or error")
	pflag.String("store-backend", api.StoreBackendPostgres, "postgres or memory")
	pflag.String("guest-header", "Guestuserid", "header carrying the guest id")
	pflag.Duration("request-timeout", 10*time.Second, "")

	// auth config
	pflag.String("auth-secret", "", "HMAC secret used to sign tokens")
	pflag.String("auth-issuer", "auctionhouse", "")
	pflag.Duration("auth-access-ttl", 30*time.Minute, "")
	pflag.Duration("auth-refresh-ttl", 24*time.Hour, "")
	pflag.Duration("auth-otp-ttl", 15*time.Minute, "")

	// s3 config
	pflag.String("s3-endpoint", "", "")
	pflag.String("s3-bucket", "", "")
	pflag.String("s3-public-base-url", "", "")
	pflag.String("s3-access-key-id", "", "")
	pflag.String("s3-secret-access-key", "", "")
	pflag.Int64("s3-rate-limit-per-hour", 20, "image uploads allowed per user per hour, 0 for unlimited")

	// db config
	pflag.String("db-user", "", "")
	pflag.String("db-password", "", "")
	pflag.String("db-host", "", "")
	pflag.Int("db-port", 5432, "")
	pflag.String("db-database", "", "")
	pflag.String("db-schema", "", "")
	pflag.Bool("db-auto-migrate", false, "create tables with gorm on start")

	// redis config
	pflag.String("redis-addr", "", "")
	pflag.String("redis-password", "", "")
	pflag.Int("redis-db", 15, "")
	pflag.String("redis-key-prefix", "auctionhouse:", "")
	pflag.Duration("redis-guest-ttl", 30*24*time.Hour, "")
	pflag.Duration("redis-lock-expiry", 8*time.Second, "")
	pflag.Duration("redis-guest-cleanup-interval", time.Hour, "interval for purging watchlists of expired guests, 0 to disable")

	// bind pflag to viper
	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("AUCTION")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// initial arguments
	return Args{
		ServerURL: viper.GetString("server-url"),
		LogLevel:  parseLogLevel(viper.GetString("log-level")),
		ServerConfig: api.ServerConfig{
			StoreBackend:   viper.GetString("store-backend"),
			GuestHeader:    viper.GetString("guest-header"),
			RequestTimeout: viper.GetDuration("request-timeout"),
			Auth: api.AuthConfig{
				Secret:     viper.GetString("auth-secret"),
				Issuer:     viper.GetString("auth-issuer"),
				AccessTTL:  viper.GetDuration("auth-access-ttl"),
				RefreshTTL: viper.GetDuration("auth-refresh-ttl"),
				OTPTTL:     viper.GetDuration("auth-otp-ttl"),
			},
			S3: api.S3Config{
				Endpoint:         viper.GetString("s3-endpoint"),
				Bucket:           viper.GetString("s3-bucket"),
				PublicBaseURL:    viper.GetString("s3-public-base-url"),
				AccessKeyID:      viper.GetString("s3-access-key-id"),
				SecretAccessKey:  viper.GetString("s3-secret-access-key"),
				RateLimitPerHour: viper.GetInt64("s3-rate-limit-per-hour"),
			},
			DB: api.DBConfig{
				User:        viper.GetString("db-user"),
				Password:    viper.GetString("db-password"),
				Host:        viper.GetString("db-host"),
				Port:        viper.GetInt("db-port"),
				Database:    viper.GetString("db-database"),
				Schema:      viper.GetString("db-schema"),
				AutoMigrate: viper.GetBool("db-auto-migrate"),
			},
			Redis: api.RedisConfig{
				Addr:       viper.GetString("redis-addr"),
				Password:   viper.GetString("redis-password"),
				DB:         viper.GetInt("redis-db"),
				KeyPrefix:  viper.GetString("redis-key-prefix"),
				GuestTTL:   viper.GetDuration("redis-guest-ttl"),
				LockExpiry: viper.GetDuration("redis-lock-expiry"),

				GuestCleanupInterval: viper.GetDuration("redis-guest-cleanup-interval"),
			},
		},
	}
}

type Args struct {
	ServerURL    string
	LogLevel     slog.Level
	ServerConfig api.ServerConfig
}

func parseLogLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Validate 檢查必要的參數，memory 模式只需要簽章金鑰
func (args Args) Validate() error {
	var errs []error
	config := args.ServerConfig
	if args.ServerURL == "" {
		errs = append(errs, errors.New("server-url is required"))
	}
	if config.Auth.Secret == "" {
		errs = append(errs, errors.New("auth-secret is required"))
	}
	switch config.StoreBackend {
	case api.StoreBackendMemory:
	case api.StoreBackendPostgres:
		required := map[string]string{
			"db-user":              config.DB.User,
			"db-host":              config.DB.Host,
			"db-database":          config.DB.Database,
			"redis-addr":           config.Redis.Addr,
			"s3-endpoint":          config.S3.Endpoint,
			"s3-bucket":            config.S3.Bucket,
			"s3-public-base-url":   config.S3.PublicBaseURL,
			"s3-access-key-id":     config.S3.AccessKeyID,
			"s3-secret-access-key": config.S3.SecretAccessKey,
		}
		for _, name := range []string{"db-user", "db-host", "db-database", "redis-addr", "s3-endpoint", "s3-bucket", "s3-public-base-url", "s3-access-key-id", "s3-secret-access-key"} {
			if required[name] == "" {
				errs = append(errs, fmt.Errorf("%s is required", name))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store-backend %q", config.StoreBackend))
	}
	return errors.Join(errs...)
}
