package entity

import "time"

// Stage checkpoints in canonical lifecycle order.
const (
	StageGoodsReceipt      = "GOODS_RECEIPT"
	StageIncomingQC        = "INCOMING_QC"
	StageProductionPlanned = "PRODUCTION_PLANNED"
	StageOperatorProcess   = "OPERATOR_PROCESS"
	StageOutgoingQC        = "OUTGOING_QC"
	StageShipped           = "SHIPPED"
	StageReturned          = "RETURNED"
)

// StageOrder is the canonical sequence. SHIPPED and RETURNED are both
// terminal; whichever is recorded first ends the line's active life.
var StageOrder = []string{
	StageGoodsReceipt,
	StageIncomingQC,
	StageProductionPlanned,
	StageOperatorProcess,
	StageOutgoingQC,
	StageShipped,
	StageReturned,
}

// StageRank returns the position of a stage in the canonical order,
// or -1 for an unknown stage. SHIPPED and RETURNED share the same rank.
func StageRank(stage string) int {
	switch stage {
	case StageGoodsReceipt:
		return 0
	case StageIncomingQC:
		return 1
	case StageProductionPlanned:
		return 2
	case StageOperatorProcess:
		return 3
	case StageOutgoingQC:
		return 4
	case StageShipped, StageReturned:
		return 5
	}
	return -1
}

// StageRecord is an append-only fact: line X passed stage S at time T.
// At most one record per stage per line, enforced by the unique index.
type StageRecord struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	OrderLineID string    `json:"order_line_id" gorm:"size:32;not null;uniqueIndex:uix_stage_records_line_stage"`
	Stage       string    `json:"stage" gorm:"size:32;not null;uniqueIndex:uix_stage_records_line_stage"`
	OperatorID  *string   `json:"operator_id" gorm:"size:32"`
	Quantity    float64   `json:"quantity" gorm:"type:decimal(10,2)"`
	LossQty     float64   `json:"loss_qty" gorm:"type:decimal(10,2);default:0"`
	Note        string    `json:"note" gorm:"size:500"`
	RecordedAt  time.Time `json:"recorded_at" gorm:"not null"`
}

func (StageRecord) TableName() string {
	return "stage_records"
}

// LossRecord attributes lost units to a checkpoint. Side entry next to the
// StageRecord, never blocking.
type LossRecord struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	OrderLineID string    `json:"order_line_id" gorm:"size:32;not null;index"`
	Stage       string    `json:"stage" gorm:"size:32;not null"`
	OperatorID  *string   `json:"operator_id" gorm:"size:32"`
	Quantity    float64   `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Reason      string    `json:"reason" gorm:"size:500"`
	RecordedAt  time.Time `json:"recorded_at" gorm:"not null"`
}

func (LossRecord) TableName() string {
	return "loss_records"
}

// OutgoingQCRecord keeps the pass/fail detail of the exit checkpoint.
type OutgoingQCRecord struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	OrderLineID string    `json:"order_line_id" gorm:"size:32;not null;uniqueIndex"`
	Passed      bool      `json:"passed" gorm:"not null"`
	DefectCode  *string   `json:"defect_code" gorm:"size:50"`
	Note        string    `json:"note" gorm:"size:500"`
	CheckedAt   time.Time `json:"checked_at" gorm:"not null"`
}

func (OutgoingQCRecord) TableName() string {
	return "outgoing_qc_records"
}

// Disposition is the human-readable current status of a line, derived
// from its stage history.
type Disposition string

const (
	DispositionPending        Disposition = "pending"
	DispositionGoodsReceived  Disposition = "goods_received"
	DispositionIncomingQCDone Disposition = "incoming_qc_done"
	DispositionPlanned        Disposition = "planned"
	DispositionInProcess      Disposition = "in_process"
	DispositionOutgoingQCDone Disposition = "outgoing_qc_done"
	DispositionShipped        Disposition = "shipped"
	DispositionReturned       Disposition = "returned"
)
