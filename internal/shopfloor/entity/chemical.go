package entity

import "time"

// Chemical is a process consumable.
type Chemical struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	Name         string    `json:"name" gorm:"size:200;uniqueIndex;not null"`
	Unit         string    `json:"unit" gorm:"size:20;not null"`
	MinThreshold float64   `json:"min_threshold" gorm:"type:decimal(10,2);default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Chemical) TableName() string {
	return "chemicals"
}

// ChemicalStock holds the current on-hand quantity. Mutated only through
// Consume (guarded decrement) and Replenish (increment); both write a
// ledger row alongside the in-place update.
type ChemicalStock struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	ChemicalID string    `json:"chemical_id" gorm:"size:32;not null;uniqueIndex"`
	OnHand     float64   `json:"on_hand" gorm:"type:decimal(12,3);not null;default:0"`
	UpdatedAt  time.Time `json:"updated_at"`

	Chemical *Chemical `json:"chemical,omitempty" gorm:"foreignKey:ChemicalID"`
}

func (ChemicalStock) TableName() string {
	return "chemical_stocks"
}

// StockReceipt is an append-only replenishment entry.
type StockReceipt struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	ChemicalID string    `json:"chemical_id" gorm:"size:32;not null;index"`
	Quantity   float64   `json:"quantity" gorm:"type:decimal(12,3);not null"`
	UnitCost   float64   `json:"unit_cost" gorm:"type:decimal(12,4);default:0"`
	ReceivedAt time.Time `json:"received_at" gorm:"not null"`
}

func (StockReceipt) TableName() string {
	return "stock_receipts"
}

// StockConsumption is an append-only consumption entry feeding the
// consumption report.
type StockConsumption struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	ChemicalID string    `json:"chemical_id" gorm:"size:32;not null;index"`
	OperatorID *string   `json:"operator_id" gorm:"size:32;index"`
	Quantity   float64   `json:"quantity" gorm:"type:decimal(12,3);not null"`
	ConsumedAt time.Time `json:"consumed_at" gorm:"not null;index"`

	Chemical *Chemical `json:"chemical,omitempty" gorm:"foreignKey:ChemicalID"`
	Operator *Operator `json:"operator,omitempty" gorm:"foreignKey:OperatorID"`
}

func (StockConsumption) TableName() string {
	return "stock_consumptions"
}
