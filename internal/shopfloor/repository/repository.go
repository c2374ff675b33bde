package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories shop-floor repository set
type Repositories struct {
	Order    *OrderRepository
	Stage    *StageRepository
	Plan     *PlanRepository
	Movement *MovementRepository
	Stock    *StockRepository
	Terminal *TerminalRepository
	Catalog  *CatalogRepository
	User     *UserRepository
}

// NewRepositories creates the shop-floor repository set
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Order:    NewOrderRepository(db),
		Stage:    NewStageRepository(db),
		Plan:     NewPlanRepository(db),
		Movement: NewMovementRepository(db),
		Stock:    NewStockRepository(db),
		Terminal: NewTerminalRepository(db),
		Catalog:  NewCatalogRepository(db),
		User:     NewUserRepository(db),
	}
}

// IsDuplicate reports whether err is a unique-constraint violation.
// Requires gorm.Config.TranslateError.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
