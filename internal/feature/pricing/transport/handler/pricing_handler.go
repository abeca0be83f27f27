// Package handler はpricingフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/feature/pricing/domain"
	"portfolio_backend/internal/feature/pricing/domain/entity"
	"portfolio_backend/internal/feature/pricing/transport/http/dto"
)

// QuoteUsecase は単一資産の価格取得ユースケースのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type QuoteUsecase interface {
	FetchOne(ctx context.Context, class entity.AssetClass, symbol string) entity.FetchOutcome
	SupportedSymbols(class entity.AssetClass) ([]string, error)
}

// RefreshUsecase は一括価格更新ユースケースのインターフェースです。
type RefreshUsecase interface {
	RefreshBatch(ctx context.Context, requests []entity.RefreshRequest) entity.RefreshBatchResult
}

// PricingHandler は価格取得に関するHTTPリクエストを処理します。
type PricingHandler struct {
	quotes  QuoteUsecase
	refresh RefreshUsecase
}

// NewPricingHandler は新しい PricingHandler を作成します。
func NewPricingHandler(quotes QuoteUsecase, refresh RefreshUsecase) *PricingHandler {
	return &PricingHandler{quotes: quotes, refresh: refresh}
}

// GetQuote は1資産の現在価格を返します。
//
// エンドポイント例:
// GET /quotes/jp_stock/7203
//
// 未対応の銘柄・資産クラスは422、取得失敗は502を返します。
func (h *PricingHandler) GetQuote(c *gin.Context) {
	class, err := entity.ParseAssetClass(c.Param("class"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	out := h.quotes.FetchOne(c.Request.Context(), class, c.Param("symbol"))
	if !out.OK() {
		c.JSON(statusFor(out.Err), gin.H{"error": out.Err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.QuoteResponse{
		Class:       class.String(),
		Symbol:      class.NormalizeSymbol(c.Param("symbol")),
		DisplayName: out.Quote.DisplayName,
		Price:       out.Quote.Price,
		AsOf:        out.Quote.AsOf,
	})
}

// RefreshPrices は複数資産の価格を一括取得し、成功分のみを返します。
//
// エンドポイント例:
// POST /prices/refresh
func (h *PricingHandler) RefreshPrices(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reqs := make([]entity.RefreshRequest, 0, len(req.Requests))
	for _, r := range req.Requests {
		class, err := entity.ParseAssetClass(r.AssetType)
		if err != nil {
			// 未知のクラスもそのまま渡し、失敗として数える
			class = entity.AssetClass(r.AssetType)
		}
		reqs = append(reqs, entity.RefreshRequest{AssetID: r.AssetID, Class: class, Symbol: r.Symbol})
	}

	res := h.refresh.RefreshBatch(c.Request.Context(), reqs)

	out := dto.RefreshResponse{Attempted: res.Attempted, Updated: make([]dto.UpdatedItem, 0, len(res.Updated))}
	for _, u := range res.Updated {
		out.Updated = append(out.Updated, dto.UpdatedItem{
			AssetID:     u.AssetID,
			DisplayName: u.Quote.DisplayName,
			Price:       u.Quote.Price,
			AsOf:        u.Quote.AsOf,
		})
	}
	c.JSON(http.StatusOK, out)
}

// ListSymbols は資産登録フォーム用に、対応銘柄が固定の資産クラスの銘柄一覧を返します。
//
// エンドポイント例:
// GET /symbols/crypto
func (h *PricingHandler) ListSymbols(c *gin.Context) {
	class, err := entity.ParseAssetClass(c.Param("class"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	symbols, err := h.quotes.SupportedSymbols(class)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	c.JSON(http.StatusOK, dto.SymbolListResponse{Class: class.String(), Symbols: symbols})
}

// statusFor は取得エラーをHTTPステータスに変換します。
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedSymbol), errors.Is(err, domain.ErrUnknownAssetClass):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
