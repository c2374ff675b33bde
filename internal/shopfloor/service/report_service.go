package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportService read-only projections over stage records, movements and
// the stock ledger. No invariants of its own.
type ReportService struct {
	stockRepo    *repository.StockRepository
	terminalRepo *repository.TerminalRepository
	db           *gorm.DB
}

func NewReportService(stockRepo *repository.StockRepository, terminalRepo *repository.TerminalRepository, db *gorm.DB) *ReportService {
	return &ReportService{
		stockRepo:    stockRepo,
		terminalRepo: terminalRepo,
		db:           db,
	}
}

// ConsumptionReport is the filtered consumption list with totals.
type ConsumptionReport struct {
	Entries       []entity.StockConsumption `json:"entries"`
	TotalRecords  int                       `json:"total_records"`
	TotalQuantity float64                   `json:"total_quantity"`
}

// Consumption returns the chemical consumption report.
func (s *ReportService) Consumption(ctx context.Context, f repository.ConsumptionFilter) (*ConsumptionReport, error) {
	entries, total, err := s.stockRepo.ListConsumptions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return &ConsumptionReport{
		Entries:       entries,
		TotalRecords:  len(entries),
		TotalQuantity: total,
	}, nil
}

// ConsumptionXLSX renders the consumption report as an XLSX workbook.
func (s *ReportService) ConsumptionXLSX(ctx context.Context, f repository.ConsumptionFilter) ([]byte, error) {
	report, err := s.Consumption(ctx, f)
	if err != nil {
		return nil, err
	}

	wb := excelize.NewFile()
	defer wb.Close()

	sheet := "Consumption"
	wb.SetSheetName("Sheet1", sheet)

	headers := []interface{}{"Date", "Chemical", "Unit", "Quantity", "Operator"}
	if err := wb.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}

	for i, e := range report.Entries {
		chemical, unit, operator := "", "", ""
		if e.Chemical != nil {
			chemical = e.Chemical.Name
			unit = e.Chemical.Unit
		}
		if e.Operator != nil {
			operator = e.Operator.FullName
		}
		row := []interface{}{
			e.ConsumedAt.Format("2006-01-02 15:04"),
			chemical,
			unit,
			e.Quantity,
			operator,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	totalCell := fmt.Sprintf("A%d", len(report.Entries)+3)
	totalRow := []interface{}{"Total", "", "", report.TotalQuantity, ""}
	if err := wb.SetSheetRow(sheet, totalCell, &totalRow); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// OperatorMinutes is an operator's cumulative processed time.
type OperatorMinutes struct {
	OperatorID   string `json:"operator_id"`
	OperatorName string `json:"operator_name"`
	TotalMinutes int    `json:"total_minutes"`
	Executions   int    `json:"executions"`
}

// OperatorTotals sums closed movement minutes per operator, busiest
// first.
func (s *ReportService) OperatorTotals(ctx context.Context) ([]OperatorMinutes, error) {
	var totals []OperatorMinutes
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			m.operator_id,
			o.full_name AS operator_name,
			COALESCE(SUM(m.elapsed_minutes), 0) AS total_minutes,
			COUNT(m.id) AS executions
		FROM movements m
		JOIN operators o ON o.id = m.operator_id
		WHERE m.ended_at IS NOT NULL
		GROUP BY m.operator_id, o.full_name
		ORDER BY total_minutes DESC
	`).Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return totals, nil
}

// BathDurationStat is the observed duration spread for one bath station
// next to its configured target range.
type BathDurationStat struct {
	BathStepID string   `json:"bath_step_id"`
	BathName   string   `json:"bath_name"`
	Executions int      `json:"executions"`
	MinMinutes int      `json:"min_minutes"`
	AvgMinutes float64  `json:"avg_minutes"`
	MaxMinutes int      `json:"max_minutes"`
	TargetMin  *int     `json:"target_min"`
	TargetMax  *int     `json:"target_max"`
}

// BathStats aggregates closed movement durations per bath station.
func (s *ReportService) BathStats(ctx context.Context) ([]BathDurationStat, error) {
	var stats []BathDurationStat
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			m.bath_step_id,
			b.name AS bath_name,
			COUNT(m.id) AS executions,
			MIN(m.elapsed_minutes) AS min_minutes,
			AVG(m.elapsed_minutes) AS avg_minutes,
			MAX(m.elapsed_minutes) AS max_minutes,
			b.min_minutes AS target_min,
			b.max_minutes AS target_max
		FROM movements m
		JOIN bath_steps b ON b.id = m.bath_step_id
		WHERE m.ended_at IS NOT NULL AND m.elapsed_minutes > 0
		GROUP BY m.bath_step_id, b.name, b.min_minutes, b.max_minutes
		ORDER BY b.name ASC
	`).Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return stats, nil
}

// ReturnsReport is the 30-day return summary with the latest entries.
type ReturnsReport struct {
	Summary *repository.ReturnSummary `json:"summary"`
	Recent  []entity.Return           `json:"recent"`
}

// Returns builds the return summary over the trailing 30 days.
func (s *ReportService) Returns(ctx context.Context) (*ReturnsReport, error) {
	summary, err := s.terminalRepo.SummarizeReturns(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	recent, err := s.terminalRepo.ListReturns(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return &ReturnsReport{Summary: summary, Recent: recent}, nil
}

// LineQuantities tracks declared vs observed quantity and loss per stage
// for one line.
type LineQuantities struct {
	OrderCode    string   `json:"order_code"`
	PartName     string   `json:"part_name"`
	DeclaredQty  float64  `json:"declared_qty"`
	ReceiptQty   *float64 `json:"receipt_qty"`
	IncomingQty  *float64 `json:"incoming_qty"`
	IncomingLoss *float64 `json:"incoming_loss"`
	ProcessQty   *float64 `json:"process_qty"`
	OutgoingQty  *float64 `json:"outgoing_qty"`
	TotalLoss    float64  `json:"total_loss"`
}

// QuantityPyramid reports per-line quantity and loss across the stage
// checkpoints, newest order first.
func (s *ReportService) QuantityPyramid(ctx context.Context, limit int) ([]LineQuantities, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []LineQuantities
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			o.code AS order_code,
			l.part_name,
			l.quantity AS declared_qty,
			MAX(CASE WHEN sr.stage = 'GOODS_RECEIPT' THEN sr.quantity END) AS receipt_qty,
			MAX(CASE WHEN sr.stage = 'INCOMING_QC' THEN sr.quantity END) AS incoming_qty,
			MAX(CASE WHEN sr.stage = 'INCOMING_QC' THEN sr.loss_qty END) AS incoming_loss,
			MAX(CASE WHEN sr.stage = 'OPERATOR_PROCESS' THEN sr.quantity END) AS process_qty,
			MAX(CASE WHEN sr.stage = 'OUTGOING_QC' THEN sr.quantity END) AS outgoing_qty,
			COALESCE(SUM(sr.loss_qty), 0) AS total_loss
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		JOIN stage_records sr ON sr.order_line_id = l.id
		GROUP BY l.id, o.code, l.part_name, l.quantity
		ORDER BY o.code DESC
		LIMIT ?
	`, limit).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return rows, nil
}
