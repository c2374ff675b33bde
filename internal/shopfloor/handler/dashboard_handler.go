package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/simyalab/coatline/internal/shopfloor/service"
)

type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Stats GET /api/v1/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, stats)
}

// List GET /api/v1/notices
func (h *DashboardHandler) List(c *gin.Context) {
	notices, err := h.svc.Notices(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": notices})
}

type noticeRequest struct {
	Message string `json:"message" binding:"required"`
}

// Post POST /api/v1/notices (admin only)
func (h *DashboardHandler) Post(c *gin.Context) {
	var req noticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	notice, err := h.svc.PostNotice(c.Request.Context(), req.Message)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, notice)
}

// Retire DELETE /api/v1/notices/:id (admin only)
func (h *DashboardHandler) Retire(c *gin.Context) {
	if err := h.svc.RetireNotice(c.Request.Context(), c.Param("id")); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "notice retired"})
}
