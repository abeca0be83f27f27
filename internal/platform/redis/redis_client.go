// Package redis はキャッシュ用のRedis接続を提供します。
package redis

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotConfigured は REDIS_HOST が未設定であることを表します。
var ErrNotConfigured = errors.New("redis: REDIS_HOST is not set")

// Config はRedis接続設定です。
type Config struct {
	Host     string
	Port     string
	Password string
}

// LoadConfig は環境変数から設定を読み込みます。REDIS_PORT の既定値は 6379 です。
func LoadConfig() Config {
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	return Config{
		Host:     os.Getenv("REDIS_HOST"),
		Port:     port,
		Password: os.Getenv("REDIS_PASSWORD"),
	}
}

// Addr は host:port を返します。
func (c Config) Addr() string { return c.Host + ":" + c.Port }

// NewRedisClient は接続を確認したクライアントを返します。
// 未設定または接続できない場合はエラーを返し、呼び出し側はキャッシュなしで動作します。
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, ErrNotConfigured
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       0,
	})

	// 接続確認
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", cfg.Addr(), "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", cfg.Addr())
	return rdb, nil
}
