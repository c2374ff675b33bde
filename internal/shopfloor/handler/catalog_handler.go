package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
)

type CatalogHandler struct {
	repo *repository.CatalogRepository
}

func NewCatalogHandler(repo *repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{repo: repo}
}

// ListProcesses GET /api/v1/processes
func (h *CatalogHandler) ListProcesses(c *gin.Context) {
	processes, err := h.repo.ListProcesses(c.Request.Context())
	if err != nil {
		InternalError(c, "list processes: "+err.Error())
		return
	}
	Success(c, gin.H{"items": processes})
}

// ListBathSteps GET /api/v1/bath-steps
func (h *CatalogHandler) ListBathSteps(c *gin.Context) {
	steps, err := h.repo.ListBathSteps(c.Request.Context())
	if err != nil {
		InternalError(c, "list bath steps: "+err.Error())
		return
	}
	Success(c, gin.H{"items": steps})
}

// ListChemicals GET /api/v1/chemicals
func (h *CatalogHandler) ListChemicals(c *gin.Context) {
	chemicals, err := h.repo.ListChemicals(c.Request.Context())
	if err != nil {
		InternalError(c, "list chemicals: "+err.Error())
		return
	}
	Success(c, gin.H{"items": chemicals})
}

// ListOperators GET /api/v1/operators
func (h *CatalogHandler) ListOperators(c *gin.Context) {
	operators, err := h.repo.ListOperators(c.Request.Context())
	if err != nil {
		InternalError(c, "list operators: "+err.Error())
		return
	}
	Success(c, gin.H{"items": operators})
}
