package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
)

// StockService the chemical stock ledger
type StockService struct {
	stockRepo   *repository.StockRepository
	catalogRepo *repository.CatalogRepository
}

func NewStockService(stockRepo *repository.StockRepository, catalogRepo *repository.CatalogRepository) *StockService {
	return &StockService{
		stockRepo:   stockRepo,
		catalogRepo: catalogRepo,
	}
}

// Consume decrements on-hand stock by qty and appends a consumption
// entry. InsufficientStock when qty exceeds the on-hand quantity; the
// check and decrement run under a row lock so concurrent consumers never
// drive stock negative.
func (s *StockService) Consume(ctx context.Context, chemicalID, operatorID string, qty float64) (*entity.StockConsumption, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("consumption quantity must be positive")
	}

	cons := &entity.StockConsumption{
		ID:         uuid.New().String()[:32],
		ChemicalID: chemicalID,
		Quantity:   qty,
		ConsumedAt: time.Now(),
	}
	if operatorID != "" {
		cons.OperatorID = &operatorID
	}

	if err := s.stockRepo.Consume(ctx, cons); err != nil {
		if errors.Is(err, repository.ErrStockShort) || errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: chemical %s", ErrInsufficientStock, chemicalID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return cons, nil
}

// Replenish appends a receipt entry and increments on-hand stock.
func (s *StockService) Replenish(ctx context.Context, chemicalID string, qty, unitCost float64) (*entity.StockReceipt, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("receipt quantity must be positive")
	}
	if _, err := s.catalogRepo.FindChemicalByID(ctx, chemicalID); err != nil {
		return nil, err
	}

	receipt := &entity.StockReceipt{
		ID:         uuid.New().String()[:32],
		ChemicalID: chemicalID,
		Quantity:   qty,
		UnitCost:   unitCost,
		ReceivedAt: time.Now(),
	}
	if err := s.stockRepo.Replenish(ctx, receipt, uuid.New().String()[:32]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return receipt, nil
}

// Stock returns the current stock row for a chemical.
func (s *StockService) Stock(ctx context.Context, chemicalID string) (*entity.ChemicalStock, error) {
	return s.stockRepo.FindByChemical(ctx, chemicalID)
}

// ListStocks returns all stock levels with their chemicals.
func (s *StockService) ListStocks(ctx context.Context) ([]entity.ChemicalStock, error) {
	return s.stockRepo.ListStocks(ctx)
}

// LowStockAlerts returns chemicals under their minimum threshold.
func (s *StockService) LowStockAlerts(ctx context.Context) ([]entity.ChemicalStock, error) {
	return s.stockRepo.ListBelowThreshold(ctx)
}
