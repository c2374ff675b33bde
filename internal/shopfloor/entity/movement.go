package entity

import "time"

// Movement is one timed execution of a plan step by one operator.
// EndedAt is nil while the execution is open; at most one open movement
// may exist per plan step at any instant. The movement row is the sole
// source of truth for "what is currently running" — there is no
// session-side cache.
type Movement struct {
	ID             string     `json:"id" gorm:"primaryKey;size:32"`
	OrderLineID    string     `json:"order_line_id" gorm:"size:32;not null;index"`
	PlanStepID     string     `json:"plan_step_id" gorm:"size:32;not null;index"`
	OperatorID     string     `json:"operator_id" gorm:"size:32;not null;index"`
	ProcessID      string     `json:"process_id" gorm:"size:32"`
	BathStepID     *string    `json:"bath_step_id" gorm:"size:32"`
	StartedAt      time.Time  `json:"started_at" gorm:"not null"`
	EndedAt        *time.Time `json:"ended_at" gorm:"index"`
	ElapsedMinutes *int       `json:"elapsed_minutes"`

	Operator *Operator `json:"operator,omitempty" gorm:"foreignKey:OperatorID"`
	PlanStep *PlanStep `json:"plan_step,omitempty" gorm:"foreignKey:PlanStepID"`
}

func (Movement) TableName() string {
	return "movements"
}

// Open reports whether the movement has not been closed yet.
func (m *Movement) Open() bool {
	return m.EndedAt == nil
}
