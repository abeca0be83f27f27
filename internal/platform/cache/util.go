package cache

import (
	"time"
)

var jst = time.FixedZone("Asia/Tokyo", 9*60*60)

// TimeUntilNextJST は now から次の hour 時（日本時間）までの期間を返します。
func TimeUntilNextJST(now time.Time, hour int) time.Duration {
	local := now.In(jst)

	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, jst)

	// 今日の該当時刻が既に過ぎている場合は翌日を使用
	if !local.Before(next) {
		next = next.Add(24 * time.Hour)
	}

	return next.Sub(local)
}
