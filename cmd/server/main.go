package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"portfolio_backend/internal/app/di"
	"portfolio_backend/internal/app/router"
	ledgerhandler "portfolio_backend/internal/feature/ledger/transport/handler"
	pricinghandler "portfolio_backend/internal/feature/pricing/transport/handler"
	infradb "portfolio_backend/internal/platform/db"
	"portfolio_backend/internal/platform/http/handler"
	infraredis "portfolio_backend/internal/platform/redis"
	"portfolio_backend/internal/platform/scheduler"
)

func main() {
	// .env があれば読み込む（本番は環境変数を直接使う）
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, using environment variables")
	}

	// db
	db, err := infradb.OpenDB()
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(context.Background(), infraredis.LoadConfig()); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Usecase
	pricing := di.NewPricing(rdb)
	ledgerUC := di.NewLedger(db, pricing.Refresh)

	// 毎日の全ユーザー価格更新
	cfg := scheduler.LoadConfig()
	sched := scheduler.NewScheduler(cfg.Location)
	if err := sched.Daily("ledger-refresh", cfg.RefreshAt, func(ctx context.Context) {
		s, err := ledgerUC.RefreshAll(ctx)
		if err != nil {
			log.Println("[WARN] ledger refresh finished with errors:", err)
		}
		log.Printf("ledger refresh: users=%d attempted=%d updated=%d", s.Users, s.Attempted, s.Updated)
	}); err != nil {
		log.Fatalf("failed to schedule refresh: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Handler
	pricingH := pricinghandler.NewPricingHandler(pricing.Quotes, pricing.Refresh)
	ledgerH := ledgerhandler.NewLedgerHandler(ledgerUC)

	health := handler.NewHealth(map[string]handler.Checker{"db": infradb.Pinger(db)})

	// ルータ生成
	r := router.NewRouter(health, pricingH, ledgerH)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
