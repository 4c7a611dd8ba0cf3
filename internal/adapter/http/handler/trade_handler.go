package handler

import (
	"stock-trade-ledger/internal/adapter/http/dto"
	"stock-trade-ledger/internal/adapter/http/middleware"
	"stock-trade-ledger/internal/core/domain"
	"stock-trade-ledger/internal/core/ports"
	"stock-trade-ledger/pkg/apperror"
	"stock-trade-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// TradeHandler serves the trade history.
type TradeHandler struct {
	tradeSvc ports.TradeService
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(tradeSvc ports.TradeService) *TradeHandler {
	return &TradeHandler{tradeSvc: tradeSvc}
}

// ListTrades handles GET /api/v1/trades?period=&ticker=.
func (h *TradeHandler) ListTrades(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var q dto.TradeListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.ErrInvalidSearch(err.Error()))
		return
	}
	dto.SanitizeStruct(&q)

	trades, err := h.tradeSvc.ListTrades(c.Request.Context(), ports.TradeQuery{
		UserID: userID,
		Period: q.Period,
		Ticker: q.Ticker,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TradeResponse, 0, len(trades))
	for i := range trades {
		items = append(items, toTradeResponse(&trades[i].Trade, &trades[i]))
	}

	period := q.Period
	if period == "" {
		period = string(domain.PeriodAll)
	}

	response.OK(c, dto.TradeListResponse{
		Items:  items,
		Total:  len(items),
		Period: period,
		Ticker: q.Ticker,
	})
}
