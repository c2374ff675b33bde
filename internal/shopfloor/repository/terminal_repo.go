package repository

import (
	"context"
	"errors"
	"time"

	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"gorm.io/gorm"
)

// TerminalRepository shipment and return disposition access
type TerminalRepository struct {
	db *gorm.DB
}

func NewTerminalRepository(db *gorm.DB) *TerminalRepository {
	return &TerminalRepository{db: db}
}

// FindShipmentByLine returns the line's shipment, if any.
func (r *TerminalRepository) FindShipmentByLine(ctx context.Context, lineID string) (*entity.Shipment, error) {
	var s entity.Shipment
	err := r.db.WithContext(ctx).Where("order_line_id = ?", lineID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListShipments returns shipments, most recent first.
func (r *TerminalRepository) ListShipments(ctx context.Context, limit int) ([]entity.Shipment, error) {
	if limit <= 0 {
		limit = 100
	}
	var shipments []entity.Shipment
	err := r.db.WithContext(ctx).
		Order("shipped_at DESC").
		Limit(limit).
		Find(&shipments).Error
	return shipments, err
}

// FindReturnByLine returns the line's most recent return, if any.
func (r *TerminalRepository) FindReturnByLine(ctx context.Context, lineID string) (*entity.Return, error) {
	var ret entity.Return
	err := r.db.WithContext(ctx).
		Where("order_line_id = ?", lineID).
		Order("returned_at DESC").
		First(&ret).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ret, nil
}

// ReturnSummary aggregates returns inside a window.
type ReturnSummary struct {
	TotalReturns   int64   `json:"total_returns"`
	TotalQuantity  float64 `json:"total_quantity"`
	ReprocessCount int64   `json:"reprocess_count"`
}

// SummarizeReturns aggregates returns recorded since the given time.
func (r *TerminalRepository) SummarizeReturns(ctx context.Context, since time.Time) (*ReturnSummary, error) {
	var summary ReturnSummary
	row := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*),
			COALESCE(SUM(quantity), 0),
			COUNT(CASE WHEN reprocess THEN 1 END)
		FROM returns
		WHERE returned_at >= ?
	`, since).Row()
	if err := row.Scan(&summary.TotalReturns, &summary.TotalQuantity, &summary.ReprocessCount); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListReturns returns recent return records, most recent first.
func (r *TerminalRepository) ListReturns(ctx context.Context, limit int) ([]entity.Return, error) {
	if limit <= 0 {
		limit = 50
	}
	var returns []entity.Return
	err := r.db.WithContext(ctx).
		Order("returned_at DESC").
		Limit(limit).
		Find(&returns).Error
	return returns, err
}
