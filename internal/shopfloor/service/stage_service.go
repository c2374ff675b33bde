package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"gorm.io/gorm"
)

// StageService is the stage gate: it enforces the canonical stage order
// and appends exactly one StageRecord per stage per line. The per-stage
// uniqueness lives in the stage_records unique index, so a lost race
// surfaces as a duplicate-key conflict and resolves to the existing
// record.
type StageService struct {
	db *gorm.DB
}

func NewStageService(db *gorm.DB) *StageService {
	return &StageService{db: db}
}

// StageFacts carries the checkpoint payload recorded with an advance.
type StageFacts struct {
	OperatorID *string
	Quantity   float64
	LossQty    float64
	Note       string
}

// HasPassed reports whether the line has a record for the stage.
// PRODUCTION_PLANNED is also satisfied by plan existence, since plan
// creation itself writes no stage record.
func (s *StageService) HasPassed(ctx context.Context, lineID, stage string) (bool, error) {
	return s.hasPassed(ctx, s.db, lineID, stage)
}

func (s *StageService) hasPassed(ctx context.Context, db *gorm.DB, lineID, stage string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&entity.StageRecord{}).
		Where("order_line_id = ? AND stage = ?", lineID, stage).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if count > 0 {
		return true, nil
	}

	if stage == entity.StageProductionPlanned {
		err := db.WithContext(ctx).
			Model(&entity.ProductionPlan{}).
			Where("order_line_id = ?", lineID).
			Count(&count).Error
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		return count > 0, nil
	}
	return false, nil
}

// Advance appends the stage record for a line after verifying every
// earlier stage has been passed. Fails with OutOfOrder when a prior
// stage is missing, and with AlreadyPassed when the stage was recorded
// before; in the latter case the existing record is returned alongside
// the error so retries are safe.
func (s *StageService) Advance(ctx context.Context, lineID, stage string, facts StageFacts) (*entity.StageRecord, error) {
	return s.AdvanceIn(ctx, s.db, lineID, stage, facts)
}

// AdvanceIn is Advance running against the given handle, so composing
// services can fold the stage append into their own transaction.
func (s *StageService) AdvanceIn(ctx context.Context, db *gorm.DB, lineID, stage string, facts StageFacts) (*entity.StageRecord, error) {
	rank := entity.StageRank(stage)
	if rank < 0 {
		return nil, fmt.Errorf("unknown stage %q", stage)
	}

	for _, prior := range entity.StageOrder {
		if entity.StageRank(prior) >= rank {
			break
		}
		passed, err := s.hasPassed(ctx, db, lineID, prior)
		if err != nil {
			return nil, err
		}
		if !passed {
			return nil, fmt.Errorf("%w: %s requires %s", ErrOutOfOrder, stage, prior)
		}
	}

	if existing, err := s.findRecord(ctx, db, lineID, stage); err == nil {
		return existing, fmt.Errorf("%w: %s", ErrAlreadyPassed, stage)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	rec := &entity.StageRecord{
		ID:          uuid.New().String()[:32],
		OrderLineID: lineID,
		Stage:       stage,
		OperatorID:  facts.OperatorID,
		Quantity:    facts.Quantity,
		LossQty:     facts.LossQty,
		Note:        facts.Note,
		RecordedAt:  time.Now(),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the append race; hand back the winner's record.
			if existing, ferr := s.findRecord(ctx, db, lineID, stage); ferr == nil {
				return existing, fmt.Errorf("%w: %s", ErrAlreadyPassed, stage)
			}
			return nil, fmt.Errorf("%w: %s", ErrAlreadyPassed, stage)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return rec, nil
}

// Records returns the line's stage history in recording order.
func (s *StageService) Records(ctx context.Context, lineID string) ([]entity.StageRecord, error) {
	var recs []entity.StageRecord
	err := s.db.WithContext(ctx).
		Where("order_line_id = ?", lineID).
		Order("recorded_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return recs, nil
}

func (s *StageService) findRecord(ctx context.Context, db *gorm.DB, lineID, stage string) (*entity.StageRecord, error) {
	var rec entity.StageRecord
	err := db.WithContext(ctx).
		Where("order_line_id = ? AND stage = ?", lineID, stage).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return &rec, nil
}
