package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"gorm.io/gorm"
)

// ShipmentService terminal dispositions: shipments and returns
type ShipmentService struct {
	orderRepo    *repository.OrderRepository
	terminalRepo *repository.TerminalRepository
	stageSvc     *StageService
	db           *gorm.DB
}

func NewShipmentService(orderRepo *repository.OrderRepository, terminalRepo *repository.TerminalRepository, stageSvc *StageService, db *gorm.DB) *ShipmentService {
	return &ShipmentService{
		orderRepo:    orderRepo,
		terminalRepo: terminalRepo,
		stageSvc:     stageSvc,
		db:           db,
	}
}

// Ship records the shipment and advances the line to SHIPPED. Quantity
// defaults to the line quantity. The stage gate rejects a line that has
// not passed outgoing QC.
func (s *ShipmentService) Ship(ctx context.Context, lineID string, qty float64) (*entity.Shipment, error) {
	line, err := s.orderRepo.FindLineByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if qty <= 0 {
		qty = line.Quantity
	}

	shipment := &entity.Shipment{
		ID:          uuid.New().String()[:32],
		OrderLineID: lineID,
		Quantity:    qty,
		ShippedAt:   time.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, aerr := s.stageSvc.AdvanceIn(ctx, tx, lineID, entity.StageShipped, StageFacts{Quantity: qty}); aerr != nil {
			return aerr
		}
		return tx.Create(shipment).Error
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

// RecordReturn records a customer return and advances the line to
// RETURNED, ending its active life. Reprocess marks parts that re-enter
// the shop as a new job.
func (s *ShipmentService) RecordReturn(ctx context.Context, lineID, operatorID, reason string, qty float64, note string, reprocess bool) (*entity.Return, error) {
	line, err := s.orderRepo.FindLineByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if qty <= 0 {
		qty = line.Quantity
	}

	ret := &entity.Return{
		ID:          uuid.New().String()[:32],
		OrderLineID: lineID,
		Reason:      reason,
		Quantity:    qty,
		Note:        note,
		Reprocess:   reprocess,
		ReturnedAt:  time.Now(),
	}
	if operatorID != "" {
		ret.OperatorID = &operatorID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, aerr := s.stageSvc.AdvanceIn(ctx, tx, lineID, entity.StageReturned, StageFacts{
			Quantity: qty,
			Note:     reason,
		}); aerr != nil {
			return aerr
		}
		return tx.Create(ret).Error
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ListShipments returns recent shipments.
func (s *ShipmentService) ListShipments(ctx context.Context, limit int) ([]entity.Shipment, error) {
	return s.terminalRepo.ListShipments(ctx, limit)
}

// ListReturns returns recent returns.
func (s *ShipmentService) ListReturns(ctx context.Context, limit int) ([]entity.Return, error) {
	return s.terminalRepo.ListReturns(ctx, limit)
}
