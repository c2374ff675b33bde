package service

import "errors"

// Workflow error taxonomy. Every operation returns one of these (possibly
// wrapped) instead of partially applying effects; transactional operations
// roll back fully on any of them.
var (
	ErrOutOfOrder         = errors.New("stage out of order")
	ErrAlreadyPassed      = errors.New("stage already passed")
	ErrDuplicateOrderCode = errors.New("duplicate order code")
	ErrMissingDrawing     = errors.New("missing drawing reference")
	ErrNotQCApproved      = errors.New("incoming QC not recorded")
	ErrPlanAlreadyExists  = errors.New("production plan already exists")
	ErrNoOpenMovement     = errors.New("no open movement")
	ErrStepsIncomplete    = errors.New("plan steps incomplete")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrStageNotReady      = errors.New("stage not ready")
	ErrStorageFailure     = errors.New("storage failure")
)
