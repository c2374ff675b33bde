package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/simyalab/coatline/internal/shopfloor/service"
)

type OrderHandler struct {
	svc            *service.OrderService
	stageSvc       *service.StageService
	dispositionSvc *service.DispositionService
}

func NewOrderHandler(svc *service.OrderService, stageSvc *service.StageService, dispositionSvc *service.DispositionService) *OrderHandler {
	return &OrderHandler{
		svc:            svc,
		stageSvc:       stageSvc,
		dispositionSvc: dispositionSvc,
	}
}

// Create POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	order, err := h.svc.CreateOrder(c.Request.Context(), req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, order)
}

// Get GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, order)
}

// GetByCode GET /api/v1/orders/by-code/:code
func (h *OrderHandler) GetByCode(c *gin.Context) {
	order, err := h.svc.GetOrderByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, order)
}

// GetLine GET /api/v1/lines/:id
func (h *OrderHandler) GetLine(c *gin.Context) {
	line, err := h.svc.GetLine(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, line)
}

// Stages GET /api/v1/lines/:id/stages
func (h *OrderHandler) Stages(c *gin.Context) {
	records, err := h.stageSvc.Records(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": records})
}

// Disposition GET /api/v1/lines/:id/disposition
func (h *OrderHandler) Disposition(c *gin.Context) {
	disposition, err := h.dispositionSvc.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"disposition": disposition})
}

type goodsReceiptRequest struct {
	CorrectedQty *float64 `json:"corrected_qty"`
	PhotoRef     string   `json:"photo_ref"`
}

// GoodsReceipt POST /api/v1/lines/:id/receipt
func (h *OrderHandler) GoodsReceipt(c *gin.Context) {
	var req goodsReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	record, err := h.svc.RecordGoodsReceipt(c.Request.Context(), c.Param("id"), GetUserID(c), req.CorrectedQty, req.PhotoRef)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, record)
}

// ListCustomers GET /api/v1/customers?name=
func (h *OrderHandler) ListCustomers(c *gin.Context) {
	customers, err := h.svc.Customers(c.Request.Context(), c.Query("name"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": customers})
}

// CustomerOrders GET /api/v1/customers/:id/orders
func (h *OrderHandler) CustomerOrders(c *gin.Context) {
	orders, err := h.svc.CustomerOrders(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": orders})
}

// Worklist GET /api/v1/worklists/:stage
func (h *OrderHandler) Worklist(c *gin.Context) {
	lines, err := h.svc.Worklist(c.Request.Context(), c.Param("stage"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": lines})
}
