package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/simyalab/coatline/internal/shopfloor/service"
)

type QualityHandler struct {
	svc *service.QualityService
}

func NewQualityHandler(svc *service.QualityService) *QualityHandler {
	return &QualityHandler{svc: svc}
}

type incomingQCRequest struct {
	AcceptedQty float64 `json:"accepted_qty" binding:"required"`
	LossQty     float64 `json:"loss_qty"`
	LossReason  string  `json:"loss_reason"`
}

// IncomingQC POST /api/v1/lines/:id/incoming-qc
func (h *QualityHandler) IncomingQC(c *gin.Context) {
	var req incomingQCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	record, err := h.svc.RecordIncomingQC(c.Request.Context(), c.Param("id"), GetUserID(c), req.AcceptedQty, req.LossQty, req.LossReason)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, record)
}

type outgoingQCRequest struct {
	Passed     bool   `json:"passed"`
	DefectCode string `json:"defect_code"`
	Note       string `json:"note"`
}

// OutgoingQC POST /api/v1/lines/:id/outgoing-qc
func (h *QualityHandler) OutgoingQC(c *gin.Context) {
	var req outgoingQCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	record, err := h.svc.RecordOutgoingQC(c.Request.Context(), c.Param("id"), req.Passed, req.DefectCode, req.Note)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, record)
}

// Losses GET /api/v1/lines/:id/losses
func (h *QualityHandler) Losses(c *gin.Context) {
	losses, err := h.svc.Losses(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": losses})
}
