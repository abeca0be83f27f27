// Package scheduler は定期ジョブの実行を提供します。
package scheduler

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-co-op/gocron"
)

const defaultRefreshAt = "16:00"

// Config はスケジュール設定です。
type Config struct {
	RefreshAt string // "HH:MM"（Location の時刻）
	Location  *time.Location
}

// LoadConfig は REFRESH_CRON_AT を読み込みます。時刻は日本時間として扱います。
func LoadConfig() Config {
	at := os.Getenv("REFRESH_CRON_AT")
	if at == "" {
		at = defaultRefreshAt
	}
	return Config{RefreshAt: at, Location: tokyo()}
}

func tokyo() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.FixedZone("Asia/Tokyo", 9*60*60)
	}
	return loc
}

// Scheduler は gocron のラッパーです。同じジョブが重なって実行されることはありません。
type Scheduler struct {
	cron *gocron.Scheduler
}

// NewScheduler は loc のタイムゾーンで動くスケジューラを生成します。
func NewScheduler(loc *time.Location) *Scheduler {
	cron := gocron.NewScheduler(loc)
	cron.SingletonModeAll()
	return &Scheduler{cron: cron}
}

// Daily は毎日 at（"HH:MM"）に job を実行するよう登録します。
func (s *Scheduler) Daily(name, at string, job func(ctx context.Context)) error {
	_, err := s.cron.Every(1).Day().At(at).Tag(name).Do(func() {
		start := time.Now()
		slog.Info("scheduled job started", "job", name)
		job(context.Background())
		slog.Info("scheduled job finished", "job", name, "elapsed", time.Since(start))
	})
	return err
}

// Start はジョブの実行を非同期に開始します。
func (s *Scheduler) Start() {
	s.cron.StartAsync()
}

// Stop はスケジューラを停止します。
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
