package entity

import "time"

// Process is a coating process (zinc, nickel, anodize...).
type Process struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Name        string    `json:"name" gorm:"size:200;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"size:500"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Process) TableName() string {
	return "processes"
}

// BathStep is a standard bath station with a target duration range in
// minutes. Step duration stats are read against this range.
type BathStep struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	Name       string    `json:"name" gorm:"size:200;not null"`
	SortOrder  int       `json:"sort_order" gorm:"default:0"`
	MinMinutes *int      `json:"min_minutes"`
	MaxMinutes *int      `json:"max_minutes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (BathStep) TableName() string {
	return "bath_steps"
}

// MaxPlanSteps caps the slots accepted by plan creation; empty slots are
// dropped before numbering.
const MaxPlanSteps = 5

// ProductionPlan is the ordered step sequence attached to an order line
// after incoming QC. Exactly one per line, enforced by the unique index.
// Immutable once created.
type ProductionPlan struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	OrderLineID string    `json:"order_line_id" gorm:"size:32;not null;uniqueIndex"`
	CreatedBy   string    `json:"created_by" gorm:"size:32"`
	CreatedAt   time.Time `json:"created_at"`

	Steps []PlanStep `json:"steps,omitempty" gorm:"foreignKey:PlanID"`
}

func (ProductionPlan) TableName() string {
	return "production_plans"
}

// PlanStep names a process and optionally a target bath. Seq is 1-based.
type PlanStep struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	PlanID     string    `json:"plan_id" gorm:"size:32;not null;index"`
	Seq        int       `json:"seq" gorm:"not null"`
	ProcessID  string    `json:"process_id" gorm:"size:32;not null"`
	BathStepID *string   `json:"bath_step_id" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`

	Process  *Process  `json:"process,omitempty" gorm:"foreignKey:ProcessID"`
	BathStep *BathStep `json:"bath_step,omitempty" gorm:"foreignKey:BathStepID"`
}

func (PlanStep) TableName() string {
	return "plan_steps"
}
