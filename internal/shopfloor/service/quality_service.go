package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"gorm.io/gorm"
)

// QualityService the two QC checkpoints
type QualityService struct {
	stageRepo *repository.StageRepository
	stageSvc  *StageService
	db        *gorm.DB
}

func NewQualityService(stageRepo *repository.StageRepository, stageSvc *StageService, db *gorm.DB) *QualityService {
	return &QualityService{
		stageRepo: stageRepo,
		stageSvc:  stageSvc,
		db:        db,
	}
}

// RecordIncomingQC records the entry checkpoint. Loss is tracked, not
// blocking: the line passes the checkpoint administratively even at 100%
// loss. When lossQty > 0 a loss side entry attributes it here.
func (s *QualityService) RecordIncomingQC(ctx context.Context, lineID, operatorID string, acceptedQty, lossQty float64, lossReason string) (*entity.StageRecord, error) {
	if acceptedQty < 0 || lossQty < 0 {
		return nil, fmt.Errorf("quantities must not be negative")
	}

	var rec *entity.StageRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var aerr error
		rec, aerr = s.stageSvc.AdvanceIn(ctx, tx, lineID, entity.StageIncomingQC, StageFacts{
			OperatorID: &operatorID,
			Quantity:   acceptedQty,
			LossQty:    lossQty,
			Note:       lossReason,
		})
		if aerr != nil {
			return aerr
		}

		if lossQty > 0 {
			loss := &entity.LossRecord{
				ID:          uuid.New().String()[:32],
				OrderLineID: lineID,
				Stage:       entity.StageIncomingQC,
				OperatorID:  &operatorID,
				Quantity:    lossQty,
				Reason:      lossReason,
				RecordedAt:  time.Now(),
			}
			if err := tx.Create(loss).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return rec, err
	}
	return rec, nil
}

// RecordOutgoingQC records the exit checkpoint. Requires the roll-up
// OPERATOR_PROCESS record, i.e. all plan steps closed; otherwise
// StageNotReady.
func (s *QualityService) RecordOutgoingQC(ctx context.Context, lineID string, passed bool, defectCode, note string) (*entity.StageRecord, error) {
	done, err := s.stageSvc.HasPassed(ctx, lineID, entity.StageOperatorProcess)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, fmt.Errorf("%w: operator process not completed", ErrStageNotReady)
	}

	var rec *entity.StageRecord
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qc := &entity.OutgoingQCRecord{
			ID:          uuid.New().String()[:32],
			OrderLineID: lineID,
			Passed:      passed,
			Note:        note,
			CheckedAt:   time.Now(),
		}
		if !passed && defectCode != "" {
			qc.DefectCode = &defectCode
		}
		if err := tx.Create(qc).Error; err != nil {
			return err
		}

		var aerr error
		rec, aerr = s.stageSvc.AdvanceIn(ctx, tx, lineID, entity.StageOutgoingQC, StageFacts{Note: note})
		return aerr
	})
	if err != nil {
		return rec, err
	}
	return rec, nil
}

// Losses returns a line's loss entries.
func (s *QualityService) Losses(ctx context.Context, lineID string) ([]entity.LossRecord, error) {
	return s.stageRepo.ListLossRecords(ctx, lineID)
}
