package repository

import (
	"context"

	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"gorm.io/gorm"
)

// StageRepository stage and loss record access
type StageRepository struct {
	db *gorm.DB
}

func NewStageRepository(db *gorm.DB) *StageRepository {
	return &StageRepository{db: db}
}

// ListRecords returns a line's stage records in recording order.
func (r *StageRepository) ListRecords(ctx context.Context, lineID string) ([]entity.StageRecord, error) {
	var recs []entity.StageRecord
	err := r.db.WithContext(ctx).
		Where("order_line_id = ?", lineID).
		Order("recorded_at ASC").
		Find(&recs).Error
	return recs, err
}

// ListLossRecords returns a line's loss entries in recording order.
func (r *StageRepository) ListLossRecords(ctx context.Context, lineID string) ([]entity.LossRecord, error) {
	var recs []entity.LossRecord
	err := r.db.WithContext(ctx).
		Where("order_line_id = ?", lineID).
		Order("recorded_at ASC").
		Find(&recs).Error
	return recs, err
}

// LinesPendingStage returns lines that have passed the stage before the
// given one but not the stage itself. For GOODS_RECEIPT the prior-stage
// condition is dropped. Used to build operator worklists.
func (r *StageRepository) LinesPendingStage(ctx context.Context, stage string) ([]entity.OrderLine, error) {
	var lines []entity.OrderLine

	query := r.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.Customer").
		Where("id NOT IN (?)",
			r.db.Model(&entity.StageRecord{}).Select("order_line_id").Where("stage = ?", stage)).
		Where("id NOT IN (?)",
			r.db.Model(&entity.Return{}).Select("order_line_id"))

	rank := entity.StageRank(stage)
	if rank > 0 {
		prior := entity.StageOrder[rank-1]
		if prior == entity.StageProductionPlanned {
			// Planned is satisfied by plan existence, not a stage record.
			query = query.Where("id IN (?)",
				r.db.Model(&entity.ProductionPlan{}).Select("order_line_id"))
		} else {
			query = query.Where("id IN (?)",
				r.db.Model(&entity.StageRecord{}).Select("order_line_id").Where("stage = ?", prior))
		}
	}

	err := query.Order("created_at ASC").Find(&lines).Error
	return lines, err
}

// LinesPendingPlan returns lines past incoming QC without a plan yet.
func (r *StageRepository) LinesPendingPlan(ctx context.Context) ([]entity.OrderLine, error) {
	var lines []entity.OrderLine
	err := r.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.Customer").
		Where("id IN (?)",
			r.db.Model(&entity.StageRecord{}).Select("order_line_id").Where("stage = ?", entity.StageIncomingQC)).
		Where("id NOT IN (?)",
			r.db.Model(&entity.ProductionPlan{}).Select("order_line_id")).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}
