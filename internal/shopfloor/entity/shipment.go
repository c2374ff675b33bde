package entity

import "time"

// Shipment marks a line leaving the workflow through the front door.
type Shipment struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	OrderLineID string    `json:"order_line_id" gorm:"size:32;not null;uniqueIndex"`
	Quantity    float64   `json:"quantity" gorm:"type:decimal(10,2);not null"`
	ShippedAt   time.Time `json:"shipped_at" gorm:"not null"`
}

func (Shipment) TableName() string {
	return "shipments"
}

// Return marks a line coming back from the customer. Reprocess flags
// whether the parts re-enter the shop as a new job.
type Return struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	OrderLineID string    `json:"order_line_id" gorm:"size:32;not null;index"`
	OperatorID  *string   `json:"operator_id" gorm:"size:32"`
	Reason      string    `json:"reason" gorm:"size:500;not null"`
	Quantity    float64   `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Note        string    `json:"note" gorm:"size:500"`
	Reprocess   bool      `json:"reprocess" gorm:"default:false"`
	ReturnedAt  time.Time `json:"returned_at" gorm:"not null"`
}

func (Return) TableName() string {
	return "returns"
}
