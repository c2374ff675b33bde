package service

import (
	"context"
	"errors"

	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
)

// DispositionService derives a line's human-readable status by replaying
// its stage records and terminal dispositions. Pure reads, safe to call
// concurrently and repeatedly.
type DispositionService struct {
	stageRepo    *repository.StageRepository
	planRepo     *repository.PlanRepository
	terminalRepo *repository.TerminalRepository
}

func NewDispositionService(stageRepo *repository.StageRepository, planRepo *repository.PlanRepository, terminalRepo *repository.TerminalRepository) *DispositionService {
	return &DispositionService{
		stageRepo:    stageRepo,
		planRepo:     planRepo,
		terminalRepo: terminalRepo,
	}
}

// Resolve returns the line's disposition. Precedence, highest first:
// Returned > Shipped > OutgoingQCDone > InProcess > Planned >
// IncomingQCDone > GoodsReceived > Pending.
func (s *DispositionService) Resolve(ctx context.Context, lineID string) (entity.Disposition, error) {
	if _, err := s.terminalRepo.FindReturnByLine(ctx, lineID); err == nil {
		return entity.DispositionReturned, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	if _, err := s.terminalRepo.FindShipmentByLine(ctx, lineID); err == nil {
		return entity.DispositionShipped, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	recs, err := s.stageRepo.ListRecords(ctx, lineID)
	if err != nil {
		return "", err
	}
	passed := make(map[string]bool, len(recs))
	for _, rec := range recs {
		passed[rec.Stage] = true
	}

	switch {
	case passed[entity.StageOutgoingQC]:
		return entity.DispositionOutgoingQCDone, nil
	case passed[entity.StageOperatorProcess]:
		return entity.DispositionInProcess, nil
	}

	planned, err := s.planRepo.ExistsForLine(ctx, lineID)
	if err != nil {
		return "", err
	}
	switch {
	case planned || passed[entity.StageProductionPlanned]:
		return entity.DispositionPlanned, nil
	case passed[entity.StageIncomingQC]:
		return entity.DispositionIncomingQCDone, nil
	case passed[entity.StageGoodsReceipt]:
		return entity.DispositionGoodsReceived, nil
	}
	return entity.DispositionPending, nil
}
