package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/simyalab/coatline/internal/shopfloor/service"
)

type StockHandler struct {
	svc *service.StockService
}

func NewStockHandler(svc *service.StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

// List GET /api/v1/stocks
func (h *StockHandler) List(c *gin.Context) {
	stocks, err := h.svc.ListStocks(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": stocks})
}

// Alerts GET /api/v1/stocks/alerts
func (h *StockHandler) Alerts(c *gin.Context) {
	stocks, err := h.svc.LowStockAlerts(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": stocks})
}

// Get GET /api/v1/stocks/:chemicalId
func (h *StockHandler) Get(c *gin.Context) {
	stock, err := h.svc.Stock(c.Request.Context(), c.Param("chemicalId"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, stock)
}

type consumeRequest struct {
	OperatorID string  `json:"operator_id"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
}

// Consume POST /api/v1/stocks/:chemicalId/consume
func (h *StockHandler) Consume(c *gin.Context) {
	var req consumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	consumption, err := h.svc.Consume(c.Request.Context(), c.Param("chemicalId"), req.OperatorID, req.Quantity)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, consumption)
}

type replenishRequest struct {
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	UnitCost float64 `json:"unit_cost"`
}

// Replenish POST /api/v1/stocks/:chemicalId/replenish (admin only)
func (h *StockHandler) Replenish(c *gin.Context) {
	var req replenishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	receipt, err := h.svc.Replenish(c.Request.Context(), c.Param("chemicalId"), req.Quantity, req.UnitCost)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, receipt)
}
