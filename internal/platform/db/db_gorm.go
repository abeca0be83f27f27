// Package db はGORMによるデータベース接続を提供します。
package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portfolio_backend/internal/feature/ledger/domain/entity"
)

const (
	connectTimeout = 60 * time.Second
	retryInterval  = 3 * time.Second
)

// Config はデータベース接続設定です。
// DatabaseURL が空の場合は SQLitePath のファイルを使います。
type Config struct {
	DatabaseURL   string
	SQLitePath    string
	RunMigrations bool
}

// LoadConfigFromEnv は環境変数から設定を読み込みます。
func LoadConfigFromEnv() Config {
	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "portfolio.db"
	}
	return Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    path,
		RunMigrations: os.Getenv("RUN_MIGRATIONS") == "true",
	}
}

// UsePostgres は Postgres に接続する設定かどうかを返します。
func (c Config) UsePostgres() bool { return c.DatabaseURL != "" }

// BuildDSN は DATABASE_URL を pgx が受け付ける形に正規化し、検証します。
// Heroku 形式の postgres:// は postgresql:// に置き換えます。
func BuildDSN(cfg Config) (string, error) {
	dsn := cfg.DatabaseURL
	if rest, ok := strings.CutPrefix(dsn, "postgres://"); ok {
		dsn = "postgresql://" + rest
	}
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	return dsn, nil
}

// ConnectWithRetry は timeout に達するまで一定間隔で opener を再試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, opener func(dsn string) (*gorm.DB, error)) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err)
		time.Sleep(retryInterval)
	}
}

func openPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func openSQLite(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}

// Open は設定に従って接続し、必要ならマイグレーションを実行します。
func Open(cfg Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	if cfg.UsePostgres() {
		dsn, derr := BuildDSN(cfg)
		if derr != nil {
			return nil, derr
		}
		db, err = ConnectWithRetry(dsn, connectTimeout, openPostgres)
	} else {
		db, err = openSQLite(cfg.SQLitePath)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.AutoMigrate(&entity.Asset{}); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return db, nil
}

// OpenDB は環境変数の設定で Open します。
func OpenDB() (*gorm.DB, error) {
	return Open(LoadConfigFromEnv())
}

// Pinger はヘルスチェック用に接続確認を行う関数を返します。
func Pinger(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
