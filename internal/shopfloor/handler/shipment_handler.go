package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/simyalab/coatline/internal/shopfloor/service"
)

type ShipmentHandler struct {
	svc *service.ShipmentService
}

func NewShipmentHandler(svc *service.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{svc: svc}
}

type shipRequest struct {
	Quantity float64 `json:"quantity"`
}

// Ship POST /api/v1/lines/:id/ship
func (h *ShipmentHandler) Ship(c *gin.Context) {
	var req shipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	shipment, err := h.svc.Ship(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, shipment)
}

type returnRequest struct {
	Reason    string  `json:"reason" binding:"required"`
	Quantity  float64 `json:"quantity"`
	Note      string  `json:"note"`
	Reprocess bool    `json:"reprocess"`
}

// RecordReturn POST /api/v1/lines/:id/return
func (h *ShipmentHandler) RecordReturn(c *gin.Context) {
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ret, err := h.svc.RecordReturn(c.Request.Context(), c.Param("id"), GetUserID(c), req.Reason, req.Quantity, req.Note, req.Reprocess)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, ret)
}

// ListShipments GET /api/v1/shipments
func (h *ShipmentHandler) ListShipments(c *gin.Context) {
	shipments, err := h.svc.ListShipments(c.Request.Context(), GetLimit(c, 50))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": shipments})
}

// ListReturns GET /api/v1/returns
func (h *ShipmentHandler) ListReturns(c *gin.Context) {
	returns, err := h.svc.ListReturns(c.Request.Context(), GetLimit(c, 50))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": returns})
}
