// Package router はHTTPルーティングを定義します。
package router

import (
	"github.com/gin-gonic/gin"

	ledgerhandler "portfolio_backend/internal/feature/ledger/transport/handler"
	pricinghandler "portfolio_backend/internal/feature/pricing/transport/handler"
)

func NewRouter(health gin.HandlerFunc, pricing *pricinghandler.PricingHandler, ledger *ledgerhandler.LedgerHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	r.OPTIONS("/healthz", health)

	// 単一資産の価格取得（資産登録時の検証・表示用）
	r.GET("/quotes/:class/:symbol", pricing.GetQuote)
	// 資産登録フォーム用の対応銘柄一覧
	r.GET("/symbols/:class", pricing.ListSymbols)
	// 任意の資産リストの一括取得
	r.POST("/prices/refresh", pricing.RefreshPrices)

	// 保存済み資産の一括更新
	r.POST("/users/:userID/assets/refresh", ledger.RefreshUser)

	return r
}
