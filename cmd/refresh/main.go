package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"portfolio_backend/internal/app/di"
	infradb "portfolio_backend/internal/platform/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, using environment variables")
	}

	db, err := infradb.OpenDB()
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	// 一括更新はキャッシュを使わない
	pricing := di.NewPricing(nil)
	uc := di.NewLedger(db, pricing.Refresh)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	s, err := uc.RefreshAll(ctx)
	if err != nil {
		log.Fatalf("refresh finished with errors (users=%d attempted=%d updated=%d): %v",
			s.Users, s.Attempted, s.Updated, err)
	}
	log.Printf("refresh ok: users=%d attempted=%d updated=%d", s.Users, s.Attempted, s.Updated)
}
