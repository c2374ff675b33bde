package service

import (
	"context"
	"errors"
	"testing"

	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"github.com/simyalab/coatline/internal/shopfloor/testutil"
)

func TestAdvanceRejectsSkippedStage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewStageService(db)
	line := testutil.SeedLine(t, db, 100)
	ctx := context.Background()

	_, err := svc.Advance(ctx, line.ID, entity.StageIncomingQC, StageFacts{Quantity: 100})
	if !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}

	// Nothing may be recorded after a rejected advance.
	recs, err := svc.Records(ctx, line.ID)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected no stage records, got %d", len(recs))
	}
}

func TestAdvanceInOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewStageService(db)
	line := testutil.SeedLine(t, db, 100)
	ctx := context.Background()

	rec, err := svc.Advance(ctx, line.ID, entity.StageGoodsReceipt, StageFacts{Quantity: 100})
	if err != nil {
		t.Fatalf("goods receipt: %v", err)
	}
	if rec.Stage != entity.StageGoodsReceipt {
		t.Fatalf("expected stage %s, got %s", entity.StageGoodsReceipt, rec.Stage)
	}

	if _, err := svc.Advance(ctx, line.ID, entity.StageIncomingQC, StageFacts{Quantity: 98, LossQty: 2}); err != nil {
		t.Fatalf("incoming QC: %v", err)
	}

	passed, err := svc.HasPassed(ctx, line.ID, entity.StageIncomingQC)
	if err != nil {
		t.Fatalf("HasPassed: %v", err)
	}
	if !passed {
		t.Fatal("expected incoming QC to be passed")
	}
}

func TestAdvanceIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewStageService(db)
	line := testutil.SeedLine(t, db, 100)
	ctx := context.Background()

	first, err := svc.Advance(ctx, line.ID, entity.StageGoodsReceipt, StageFacts{Quantity: 100})
	if err != nil {
		t.Fatalf("first advance: %v", err)
	}

	second, err := svc.Advance(ctx, line.ID, entity.StageGoodsReceipt, StageFacts{Quantity: 50})
	if !errors.Is(err, ErrAlreadyPassed) {
		t.Fatalf("expected ErrAlreadyPassed, got %v", err)
	}
	if second == nil || second.ID != first.ID {
		t.Fatalf("expected the original record back, got %+v", second)
	}
	if second.Quantity != 100 {
		t.Fatalf("retry must not overwrite the record, quantity = %v", second.Quantity)
	}
}

func TestAdvanceUnknownStage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewStageService(db)
	line := testutil.SeedLine(t, db, 10)

	if _, err := svc.Advance(context.Background(), line.ID, "POLISHING", StageFacts{}); err == nil {
		t.Fatal("expected error for unknown stage")
	}
}

func TestPlanExistenceSatisfiesPlannedStage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewStageService(db)
	line := testutil.SeedLine(t, db, 100)
	ctx := context.Background()

	if _, err := svc.Advance(ctx, line.ID, entity.StageGoodsReceipt, StageFacts{Quantity: 100}); err != nil {
		t.Fatalf("goods receipt: %v", err)
	}
	if _, err := svc.Advance(ctx, line.ID, entity.StageIncomingQC, StageFacts{Quantity: 100}); err != nil {
		t.Fatalf("incoming QC: %v", err)
	}

	// Operator process is still gated before a plan exists.
	if _, err := svc.Advance(ctx, line.ID, entity.StageOperatorProcess, StageFacts{}); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder without a plan, got %v", err)
	}

	proc, _ := testutil.SeedProcess(t, db, "Zinc", 10, 30)
	plan := &entity.ProductionPlan{
		ID:          "plan-test-0001",
		OrderLineID: line.ID,
		Steps: []entity.PlanStep{
			{ID: "step-test-0001", PlanID: "plan-test-0001", Seq: 1, ProcessID: proc.ID},
		},
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("seed plan: %v", err)
	}

	passed, err := svc.HasPassed(ctx, line.ID, entity.StageProductionPlanned)
	if err != nil {
		t.Fatalf("HasPassed: %v", err)
	}
	if !passed {
		t.Fatal("plan existence should satisfy PRODUCTION_PLANNED")
	}

	if _, err := svc.Advance(ctx, line.ID, entity.StageOperatorProcess, StageFacts{}); err != nil {
		t.Fatalf("operator process after plan: %v", err)
	}
}

func TestConcurrentAdvanceSingleRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewStageService(db)
	line := testutil.SeedLine(t, db, 100)
	ctx := context.Background()

	const workers = 8
	done := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := svc.Advance(ctx, line.ID, entity.StageGoodsReceipt, StageFacts{Quantity: 100})
			done <- err
		}()
	}

	wins := 0
	for i := 0; i < workers; i++ {
		err := <-done
		if err == nil {
			wins++
		} else if !errors.Is(err, ErrAlreadyPassed) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}

	var count int64
	db.Model(&entity.StageRecord{}).
		Where("order_line_id = ? AND stage = ?", line.ID, entity.StageGoodsReceipt).
		Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 stage record, got %d", count)
	}
}
