package handler

import (
	"strings"

	"stock-trade-ledger/internal/adapter/http/dto"
	"stock-trade-ledger/internal/adapter/http/middleware"
	"stock-trade-ledger/internal/core/domain"
	"stock-trade-ledger/internal/core/ports"
	"stock-trade-ledger/pkg/apperror"
	"stock-trade-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// OrderHandler handles order placement, preview and the order page.
type OrderHandler struct {
	tradeSvc     ports.TradeService
	orderPageSvc ports.OrderPageService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(tradeSvc ports.TradeService, orderPageSvc ports.OrderPageService) *OrderHandler {
	return &OrderHandler{tradeSvc: tradeSvc, orderPageSvc: orderPageSvc}
}

// PlaceOrder handles POST /api/v1/orders.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	req, ok := bindOrder(c)
	if !ok {
		return
	}

	trade, err := h.tradeSvc.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTradeResponse(trade, nil))
}

// PreviewOrder handles POST /api/v1/orders/preview. Nothing is persisted.
func (h *OrderHandler) PreviewOrder(c *gin.Context) {
	req, ok := bindOrder(c)
	if !ok {
		return
	}

	trade, err := h.tradeSvc.PreviewOrder(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTradeResponse(trade, nil))
}

// GetOrderPage handles GET /api/v1/orders/page/:symbol.
func (h *OrderHandler) GetOrderPage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var uri dto.OrderPageURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.ErrInvalidRequest(err.Error()))
		return
	}

	page, err := h.orderPageSvc.GetOrderPage(c.Request.Context(), userID, uri.Symbol)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toOrderPageResponse(page))
}

// bindOrder writes the error response itself when it returns false.
func bindOrder(c *gin.Context) (ports.OrderRequest, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return ports.OrderRequest{}, false
	}

	var body dto.OrderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, apperror.ErrInvalidOrder(err.Error()))
		return ports.OrderRequest{}, false
	}

	req, err := toOrderRequest(userID, body)
	if err != nil {
		response.Error(c, apperror.ErrInvalidOrder(err.Error()))
		return ports.OrderRequest{}, false
	}
	return req, true
}

func toOrderRequest(userID int64, body dto.OrderRequest) (ports.OrderRequest, error) {
	side, err := domain.ParseSide(body.Side)
	if err != nil {
		return ports.OrderRequest{}, err
	}
	orderType, err := domain.ParseOrderType(body.OrderType)
	if err != nil {
		return ports.OrderRequest{}, err
	}
	quantity, err := decimal.NewFromString(body.Quantity)
	if err != nil {
		return ports.OrderRequest{}, err
	}

	unitPrice := decimal.Zero
	if orderType == domain.OrderTypeLimit {
		if unitPrice, err = decimal.NewFromString(body.UnitPrice); err != nil {
			return ports.OrderRequest{}, err
		}
	}

	rate := decimal.NewFromInt(1)
	if body.ExchangeRate != "" {
		if rate, err = decimal.NewFromString(body.ExchangeRate); err != nil {
			return ports.OrderRequest{}, err
		}
	}

	return ports.OrderRequest{
		UserID:             userID,
		TickerID:           body.TickerID,
		Side:               side,
		Type:               orderType,
		Quantity:           quantity,
		UnitPrice:          unitPrice,
		SettlementCurrency: domain.Currency(strings.ToUpper(body.SettlementCurrency)),
		ExchangeRate:       rate,
	}, nil
}
