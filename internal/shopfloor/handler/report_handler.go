package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"github.com/simyalab/coatline/internal/shopfloor/service"
)

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func consumptionFilter(c *gin.Context) repository.ConsumptionFilter {
	f := repository.ConsumptionFilter{
		OperatorID: c.Query("operator_id"),
		ChemicalID: c.Query("chemical_id"),
		Limit:      GetLimit(c, 200),
	}
	if raw := c.Query("start"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			f.Start = &t
		}
	}
	if raw := c.Query("end"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			end := t.Add(24 * time.Hour)
			f.End = &end
		}
	}
	return f
}

// Consumption GET /api/v1/reports/consumption
func (h *ReportHandler) Consumption(c *gin.Context) {
	report, err := h.svc.Consumption(c.Request.Context(), consumptionFilter(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, report)
}

// ConsumptionExport GET /api/v1/reports/consumption/export
func (h *ReportHandler) ConsumptionExport(c *gin.Context) {
	data, err := h.svc.ConsumptionXLSX(c.Request.Context(), consumptionFilter(c))
	if err != nil {
		ServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("consumption-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// OperatorTotals GET /api/v1/reports/operators
func (h *ReportHandler) OperatorTotals(c *gin.Context) {
	totals, err := h.svc.OperatorTotals(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": totals})
}

// BathStats GET /api/v1/reports/baths
func (h *ReportHandler) BathStats(c *gin.Context) {
	stats, err := h.svc.BathStats(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": stats})
}

// Returns GET /api/v1/reports/returns
func (h *ReportHandler) Returns(c *gin.Context) {
	report, err := h.svc.Returns(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, report)
}

// QuantityPyramid GET /api/v1/reports/quantities
func (h *ReportHandler) QuantityPyramid(c *gin.Context) {
	rows, err := h.svc.QuantityPyramid(c.Request.Context(), GetLimit(c, 50))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"items": rows})
}
