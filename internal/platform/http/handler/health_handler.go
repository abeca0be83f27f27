// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

const checkTimeout = 2 * time.Second

// Checker は依存先（DBなど）の疎通を確認します。
type Checker func(ctx context.Context) error

// NewHealth は /healthz ハンドラーを返します。
// checks のいずれかが失敗した場合は503と失敗した項目を返します。
func NewHealth(checks map[string]Checker) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		defer cancel()

		status := http.StatusOK
		failed := map[string]string{}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				status = http.StatusServiceUnavailable
				failed[name] = err.Error()
			}
		}

		if c.Request.Method == http.MethodHead {
			c.Status(status)
			return
		}
		if len(failed) > 0 {
			c.JSON(status, gin.H{"status": "unavailable", "failed": failed})
			return
		}
		c.JSON(status, gin.H{"status": "ok"})
	}
}
