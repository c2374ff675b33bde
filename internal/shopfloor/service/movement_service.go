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

// MovementService the step execution tracker. The movement row is the
// only record of a running step; elapsed time is always derived from the
// stored timestamps, never from client-supplied durations.
type MovementService struct {
	movementRepo *repository.MovementRepository
	planRepo     *repository.PlanRepository
	stageSvc     *StageService
	db           *gorm.DB
}

func NewMovementService(movementRepo *repository.MovementRepository, planRepo *repository.PlanRepository, stageSvc *StageService, db *gorm.DB) *MovementService {
	return &MovementService{
		movementRepo: movementRepo,
		planRepo:     planRepo,
		stageSvc:     stageSvc,
		db:           db,
	}
}

// Start opens a timed execution of a plan step. Idempotent: when the
// step already has an open movement the existing one is returned, so a
// double click or retry never opens a second execution.
func (s *MovementService) Start(ctx context.Context, lineID, stepID, operatorID string) (*entity.Movement, error) {
	step, err := s.planRepo.FindStepByID(ctx, stepID)
	if err != nil {
		return nil, err
	}

	plan, err := s.planRepo.FindByLineID(ctx, lineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: line %s has no plan", ErrStageNotReady, lineID)
		}
		return nil, err
	}
	if step.PlanID != plan.ID {
		return nil, fmt.Errorf("step %s does not belong to line %s", stepID, lineID)
	}

	m := &entity.Movement{
		ID:          uuid.New().String()[:32],
		OrderLineID: lineID,
		PlanStepID:  stepID,
		OperatorID:  operatorID,
		ProcessID:   step.ProcessID,
		BathStepID:  step.BathStepID,
		StartedAt:   time.Now(),
	}

	open, _, err := s.movementRepo.StartOpen(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return open, nil
}

// Finish closes the step's open movement and returns the elapsed
// minutes, computed server-side from the stored timestamps and rounded
// to the nearest minute. NoOpenMovement when nothing is running for this
// line and step; an error return leaves every movement untouched.
func (s *MovementService) Finish(ctx context.Context, lineID, stepID string) (int, error) {
	closed, err := s.movementRepo.CloseOpen(ctx, lineID, stepID, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("%w: step %s", ErrNoOpenMovement, stepID)
		}
		return 0, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return *closed.ElapsedMinutes, nil
}

// CompleteLine writes the roll-up OPERATOR_PROCESS record once every
// plan step has at least one closed movement. Steps may have run in any
// order; only "all closed" matters. The PRODUCTION_PLANNED record is
// backfilled first so the persisted stage log stays gap-free.
func (s *MovementService) CompleteLine(ctx context.Context, lineID, operatorID string) (*entity.StageRecord, error) {
	plan, err := s.planRepo.FindByLineID(ctx, lineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: line %s has no plan", ErrStageNotReady, lineID)
		}
		return nil, err
	}

	openIDs, err := s.planRepo.OpenStepIDs(ctx, plan.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(openIDs) > 0 {
		return nil, fmt.Errorf("%w: %d of %d steps still open", ErrStepsIncomplete, len(openIDs), len(plan.Steps))
	}

	var rec *entity.StageRecord
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, perr := s.stageSvc.AdvanceIn(ctx, tx, lineID, entity.StageProductionPlanned, StageFacts{})
		if perr != nil && !errors.Is(perr, ErrAlreadyPassed) {
			return perr
		}

		var aerr error
		rec, aerr = s.stageSvc.AdvanceIn(ctx, tx, lineID, entity.StageOperatorProcess, StageFacts{
			OperatorID: &operatorID,
		})
		return aerr
	})
	if err != nil {
		return rec, err
	}
	return rec, nil
}

// OpenMovement returns the step's open movement, if any.
func (s *MovementService) OpenMovement(ctx context.Context, stepID string) (*entity.Movement, error) {
	return s.movementRepo.FindOpenByStep(ctx, stepID)
}

// History returns a line's movements, most recent first.
func (s *MovementService) History(ctx context.Context, lineID string) ([]entity.Movement, error) {
	return s.movementRepo.ListByLine(ctx, lineID)
}

// StepHistory returns a single step's movements, most recent first.
func (s *MovementService) StepHistory(ctx context.Context, stepID string) ([]entity.Movement, error) {
	return s.movementRepo.ListByStep(ctx, stepID)
}
