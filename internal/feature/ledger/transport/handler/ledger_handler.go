// Package handler はledgerフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/feature/ledger/transport/http/dto"
	"portfolio_backend/internal/feature/ledger/usecase"
)

// LedgerUsecase は保有資産の価格更新ユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type LedgerUsecase interface {
	RefreshUser(ctx context.Context, userID uint) (usecase.RefreshSummary, error)
}

// LedgerHandler は保有資産に関するHTTPリクエストを処理します。
type LedgerHandler struct {
	uc LedgerUsecase
}

// NewLedgerHandler は新しい LedgerHandler を作成します。
func NewLedgerHandler(uc LedgerUsecase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// RefreshUser は指定ユーザーの全資産の価格を更新します。
//
// エンドポイント例:
// POST /users/:userID/assets/refresh
func (h *LedgerHandler) RefreshUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("userID"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	s, err := h.uc.RefreshUser(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.RefreshResponse{Attempted: s.Attempted, Updated: s.Updated})
}
