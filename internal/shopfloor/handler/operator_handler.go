package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"github.com/simyalab/coatline/internal/shopfloor/service"
)

type OperatorHandler struct {
	svc *service.MovementService
}

func NewOperatorHandler(svc *service.MovementService) *OperatorHandler {
	return &OperatorHandler{svc: svc}
}

type startStepRequest struct {
	LineID     string `json:"line_id" binding:"required"`
	OperatorID string `json:"operator_id" binding:"required"`
}

// Start POST /api/v1/steps/:id/start
//
// Idempotent: starting a step that already has an open movement returns
// that movement unchanged.
func (h *OperatorHandler) Start(c *gin.Context) {
	var req startStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	movement, err := h.svc.Start(c.Request.Context(), req.LineID, c.Param("id"), req.OperatorID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, movement)
}

type finishStepRequest struct {
	LineID string `json:"line_id" binding:"required"`
}

// Finish POST /api/v1/steps/:id/finish
func (h *OperatorHandler) Finish(c *gin.Context) {
	var req finishStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	minutes, err := h.svc.Finish(c.Request.Context(), req.LineID, c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"elapsed_minutes": minutes})
}

// Open GET /api/v1/steps/:id/open
func (h *OperatorHandler) Open(c *gin.Context) {
	movement, err := h.svc.OpenMovement(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			Success(c, gin.H{"open": false})
			return
		}
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"open": true, "movement": movement})
}

type completeLineRequest struct {
	OperatorID string `json:"operator_id" binding:"required"`
}

// CompleteLine POST /api/v1/lines/:id/complete
func (h *OperatorHandler) CompleteLine(c *gin.Context) {
	var req completeLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	record, err := h.svc.CompleteLine(c.Request.Context(), c.Param("id"), req.OperatorID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, record)
}

// History GET /api/v1/lines/:id/movements
func (h *OperatorHandler) History(c *gin.Context) {
	movements, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": movements})
}

// StepHistory GET /api/v1/steps/:id/movements
func (h *OperatorHandler) StepHistory(c *gin.Context) {
	movements, err := h.svc.StepHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": movements})
}
