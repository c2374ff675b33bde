package repository

import (
	"context"
	"errors"
	"time"

	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStockShort is returned by Consume when on-hand quantity is below the
// requested amount. Surfaced by the service as InsufficientStock.
var ErrStockShort = errors.New("stock below requested quantity")

// StockRepository chemical stock access
type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

// Consume decrements on-hand stock and appends the consumption entry in
// one transaction. The stock row is locked (SELECT ... FOR UPDATE) so
// concurrent consumptions of the same chemical serialize and the
// availability check never runs against a stale quantity.
func (r *StockRepository) Consume(ctx context.Context, cons *entity.StockConsumption) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stock entity.ChemicalStock
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("chemical_id = ?", cons.ChemicalID).
			First(&stock).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if stock.OnHand < cons.Quantity {
			return ErrStockShort
		}

		stock.OnHand -= cons.Quantity
		if err := tx.Save(&stock).Error; err != nil {
			return err
		}
		return tx.Create(cons).Error
	})
}

// Replenish appends a receipt entry and increments on-hand stock in one
// transaction. Explicit application code, no trigger variant. A missing
// stock row is created on first receipt.
func (r *StockRepository) Replenish(ctx context.Context, receipt *entity.StockReceipt, stockID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(receipt).Error; err != nil {
			return err
		}

		var stock entity.ChemicalStock
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("chemical_id = ?", receipt.ChemicalID).
			First(&stock).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			stock = entity.ChemicalStock{
				ID:         stockID,
				ChemicalID: receipt.ChemicalID,
				OnHand:     receipt.Quantity,
			}
			return tx.Create(&stock).Error
		}
		if err != nil {
			return err
		}

		stock.OnHand += receipt.Quantity
		return tx.Save(&stock).Error
	})
}

// FindByChemical returns the stock row for a chemical.
func (r *StockRepository) FindByChemical(ctx context.Context, chemicalID string) (*entity.ChemicalStock, error) {
	var stock entity.ChemicalStock
	err := r.db.WithContext(ctx).
		Preload("Chemical").
		Where("chemical_id = ?", chemicalID).
		First(&stock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &stock, nil
}

// ListStocks returns all stock rows with their chemicals, by name.
func (r *StockRepository) ListStocks(ctx context.Context) ([]entity.ChemicalStock, error) {
	var stocks []entity.ChemicalStock
	err := r.db.WithContext(ctx).
		Preload("Chemical").
		Joins("JOIN chemicals ON chemicals.id = chemical_stocks.chemical_id").
		Order("chemicals.name ASC").
		Find(&stocks).Error
	return stocks, err
}

// ListBelowThreshold returns stocks under the chemical's minimum level.
func (r *StockRepository) ListBelowThreshold(ctx context.Context) ([]entity.ChemicalStock, error) {
	var stocks []entity.ChemicalStock
	err := r.db.WithContext(ctx).
		Preload("Chemical").
		Joins("JOIN chemicals ON chemicals.id = chemical_stocks.chemical_id").
		Where("chemical_stocks.on_hand < chemicals.min_threshold").
		Order("chemicals.name ASC").
		Find(&stocks).Error
	return stocks, err
}

// ConsumptionFilter narrows the consumption report.
type ConsumptionFilter struct {
	Start      *time.Time
	End        *time.Time
	OperatorID string
	ChemicalID string
	Limit      int
}

// ListConsumptions returns filtered consumption entries, most recent
// first, with the filtered total quantity.
func (r *StockRepository) ListConsumptions(ctx context.Context, f ConsumptionFilter) ([]entity.StockConsumption, float64, error) {
	query := r.db.WithContext(ctx).Model(&entity.StockConsumption{})

	if f.Start != nil {
		query = query.Where("consumed_at >= ?", *f.Start)
	}
	if f.End != nil {
		query = query.Where("consumed_at <= ?", *f.End)
	}
	if f.OperatorID != "" {
		query = query.Where("operator_id = ?", f.OperatorID)
	}
	if f.ChemicalID != "" {
		query = query.Where("chemical_id = ?", f.ChemicalID)
	}

	var total float64
	if err := query.Session(&gorm.Session{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 500
	}

	var entries []entity.StockConsumption
	err := query.Session(&gorm.Session{}).
		Preload("Chemical").
		Preload("Operator").
		Order("consumed_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, total, err
}
