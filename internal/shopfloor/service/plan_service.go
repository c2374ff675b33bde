package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"gorm.io/gorm"
)

// PlanService the production plan builder
type PlanService struct {
	planRepo *repository.PlanRepository
	stageSvc *StageService
}

func NewPlanService(planRepo *repository.PlanRepository, stageSvc *StageService) *PlanService {
	return &PlanService{
		planRepo: planRepo,
		stageSvc: stageSvc,
	}
}

// PlanSlot is one requested (process, optional bath) pair. Slots with an
// empty process are dropped before numbering.
type PlanSlot struct {
	ProcessID  string  `json:"process_id"`
	BathStepID *string `json:"bath_step_id"`
}

// CreatePlan attaches the ordered step sequence to a line. Requires the
// INCOMING_QC record; at most one plan per line, which the unique index
// on production_plans.order_line_id enforces even under concurrent
// creation. No stage record is written here; the stage log catches up
// when the plan completes.
func (s *PlanService) CreatePlan(ctx context.Context, lineID, createdBy string, slots []PlanSlot) (*entity.ProductionPlan, error) {
	approved, err := s.stageSvc.HasPassed(ctx, lineID, entity.StageIncomingQC)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, fmt.Errorf("%w: line %s", ErrNotQCApproved, lineID)
	}

	if len(slots) > entity.MaxPlanSteps {
		return nil, fmt.Errorf("at most %d plan steps allowed", entity.MaxPlanSteps)
	}

	var steps []entity.PlanStep
	seq := 0
	for _, slot := range slots {
		if slot.ProcessID == "" {
			continue
		}
		seq++
		steps = append(steps, entity.PlanStep{
			ID:         uuid.New().String()[:32],
			Seq:        seq,
			ProcessID:  slot.ProcessID,
			BathStepID: slot.BathStepID,
		})
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("plan needs at least one process step")
	}

	plan := &entity.ProductionPlan{
		ID:          uuid.New().String()[:32],
		OrderLineID: lineID,
		CreatedBy:   createdBy,
		Steps:       steps,
	}
	for i := range plan.Steps {
		plan.Steps[i].PlanID = plan.ID
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: line %s", ErrPlanAlreadyExists, lineID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return plan, nil
}

// GetPlan loads a line's plan with ordered steps.
func (s *PlanService) GetPlan(ctx context.Context, lineID string) (*entity.ProductionPlan, error) {
	return s.planRepo.FindByLineID(ctx, lineID)
}
