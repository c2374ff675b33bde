package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/simyalab/coatline/internal/shopfloor/service"
)

type PlanHandler struct {
	svc *service.PlanService
}

func NewPlanHandler(svc *service.PlanService) *PlanHandler {
	return &PlanHandler{svc: svc}
}

type createPlanRequest struct {
	Steps []service.PlanSlot `json:"steps" binding:"required"`
}

// Create POST /api/v1/lines/:id/plan
func (h *PlanHandler) Create(c *gin.Context) {
	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	plan, err := h.svc.CreatePlan(c.Request.Context(), c.Param("id"), GetUserID(c), req.Steps)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, plan)
}

// Get GET /api/v1/lines/:id/plan
func (h *PlanHandler) Get(c *gin.Context) {
	plan, err := h.svc.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, plan)
}
