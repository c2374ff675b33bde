package repository

import (
	"context"
	"errors"

	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"gorm.io/gorm"
)

// PlanRepository production plan access
type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Create persists a plan and its steps in one transaction. A
// unique-index conflict on the line means a plan already exists.
func (r *PlanRepository) Create(ctx context.Context, plan *entity.ProductionPlan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(plan).Error
	})
}

// FindByLineID loads a line's plan with ordered steps.
func (r *PlanRepository) FindByLineID(ctx context.Context, lineID string) (*entity.ProductionPlan, error) {
	var plan entity.ProductionPlan
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Preload("Steps.Process").
		Preload("Steps.BathStep").
		Where("order_line_id = ?", lineID).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// ExistsForLine reports whether the line already has a plan.
func (r *PlanRepository) ExistsForLine(ctx context.Context, lineID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ProductionPlan{}).
		Where("order_line_id = ?", lineID).
		Count(&count).Error
	return count > 0, err
}

// FindStepByID loads a plan step.
func (r *PlanRepository) FindStepByID(ctx context.Context, stepID string) (*entity.PlanStep, error) {
	var step entity.PlanStep
	err := r.db.WithContext(ctx).
		Preload("Process").
		Preload("BathStep").
		Where("id = ?", stepID).
		First(&step).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &step, nil
}

// OpenStepIDs returns the plan's step IDs that have no closed movement
// yet. An empty result means every step was completed at least once.
func (r *PlanRepository) OpenStepIDs(ctx context.Context, planID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entity.PlanStep{}).
		Where("plan_id = ?", planID).
		Where("id NOT IN (?)",
			r.db.Model(&entity.Movement{}).Select("plan_step_id").Where("ended_at IS NOT NULL")).
		Pluck("id", &ids).Error
	return ids, err
}
