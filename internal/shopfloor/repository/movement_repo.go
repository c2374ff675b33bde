package repository

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MovementRepository timed step execution access
type MovementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// StartOpen opens a movement for a plan step, or returns the already open
// one. The plan step row is locked for the duration of the transaction so
// two concurrent starts serialize and only one movement is created.
// The second return value reports whether a new movement was created.
func (r *MovementRepository) StartOpen(ctx context.Context, m *entity.Movement) (*entity.Movement, bool, error) {
	var result *entity.Movement
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var step entity.PlanStep
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", m.PlanStepID).
			First(&step).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var open entity.Movement
		err := tx.Where("plan_step_id = ? AND ended_at IS NULL", m.PlanStepID).
			Order("started_at DESC").
			First(&open).Error
		if err == nil {
			result = &open
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(m).Error; err != nil {
			return err
		}
		result = m
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// CloseOpen closes the most recent open movement of a plan step and
// stores the elapsed minutes rounded from the stored timestamps. The open
// row is selected FOR UPDATE so two concurrent finishes serialize; the
// loser sees no open row and gets ErrNotFound. The line predicate is part
// of the locked select, so a caller naming the wrong line mutates nothing.
func (r *MovementRepository) CloseOpen(ctx context.Context, lineID, stepID string, endedAt time.Time) (*entity.Movement, error) {
	var closed *entity.Movement

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open entity.Movement
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_line_id = ? AND plan_step_id = ? AND ended_at IS NULL", lineID, stepID).
			Order("started_at DESC").
			First(&open).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		elapsed := int(math.Round(endedAt.Sub(open.StartedAt).Minutes()))
		open.EndedAt = &endedAt
		open.ElapsedMinutes = &elapsed

		if err := tx.Save(&open).Error; err != nil {
			return err
		}
		closed = &open
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// FindOpenByStep returns the open movement of a step, if any.
func (r *MovementRepository) FindOpenByStep(ctx context.Context, stepID string) (*entity.Movement, error) {
	var m entity.Movement
	err := r.db.WithContext(ctx).
		Where("plan_step_id = ? AND ended_at IS NULL", stepID).
		Order("started_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListByLine returns a line's movements, most recent first.
func (r *MovementRepository) ListByLine(ctx context.Context, lineID string) ([]entity.Movement, error) {
	var movements []entity.Movement
	err := r.db.WithContext(ctx).
		Preload("Operator").
		Preload("PlanStep").
		Preload("PlanStep.Process").
		Preload("PlanStep.BathStep").
		Where("order_line_id = ?", lineID).
		Order("started_at DESC").
		Find(&movements).Error
	return movements, err
}

// ListByStep returns a step's movements, most recent first.
func (r *MovementRepository) ListByStep(ctx context.Context, stepID string) ([]entity.Movement, error) {
	var movements []entity.Movement
	err := r.db.WithContext(ctx).
		Where("plan_step_id = ?", stepID).
		Order("started_at DESC").
		Find(&movements).Error
	return movements, err
}

// CountOpen returns the number of currently open movements.
func (r *MovementRepository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Movement{}).
		Where("ended_at IS NULL").
		Count(&count).Error
	return count, err
}
