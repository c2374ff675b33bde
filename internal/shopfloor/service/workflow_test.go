package service

import (
	"context"
	"errors"
	"testing"

	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"github.com/simyalab/coatline/internal/shopfloor/testutil"
)

// Full pass of one line through the shop: intake, receipt, incoming QC
// with loss, a two-step plan, timed execution, completion, outgoing QC,
// shipment.
func TestLineLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	stageSvc := NewStageService(db)
	orderSvc := NewOrderService(repos.Order, repos.Stage, stageSvc, db)
	qualitySvc := NewQualityService(repos.Stage, stageSvc, db)
	planSvc := NewPlanService(repos.Plan, stageSvc)
	movementSvc := NewMovementService(repos.Movement, repos.Plan, stageSvc, db)
	shipmentSvc := NewShipmentService(repos.Order, repos.Terminal, stageSvc, db)
	dispositionSvc := NewDispositionService(repos.Stage, repos.Plan, repos.Terminal)
	ctx := context.Background()

	order, err := orderSvc.CreateOrder(ctx, CreateOrderRequest{
		CustomerName: "Vector Machining",
		PartName:     "Hinge plate",
		Quantity:     200,
		DrawingRef:   "drawings/hinge.pdf",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	line := order.Lines[0]

	if _, err := orderSvc.RecordGoodsReceipt(ctx, line.ID, "op-1", nil, ""); err != nil {
		t.Fatalf("RecordGoodsReceipt: %v", err)
	}

	if _, err := qualitySvc.RecordIncomingQC(ctx, line.ID, "op-1", 195, 5, "shipping damage"); err != nil {
		t.Fatalf("RecordIncomingQC: %v", err)
	}

	zinc, zincBath := testutil.SeedProcess(t, db, "Zinc", 20, 40)
	rinse, _ := testutil.SeedProcess(t, db, "Rinse", 1, 5)
	plan, err := planSvc.CreatePlan(ctx, line.ID, "planner-1", []PlanSlot{
		{ProcessID: zinc.ID, BathStepID: &zincBath.ID},
		{ProcessID: rinse.ID},
	})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	// Outgoing QC cannot jump the queue.
	if _, err := qualitySvc.RecordOutgoingQC(ctx, line.ID, true, "", ""); !errors.Is(err, ErrStageNotReady) {
		t.Fatalf("expected ErrStageNotReady, got %v", err)
	}

	for _, step := range plan.Steps {
		if _, err := movementSvc.Start(ctx, line.ID, step.ID, "op-2"); err != nil {
			t.Fatalf("Start step %d: %v", step.Seq, err)
		}
		if _, err := movementSvc.Finish(ctx, line.ID, step.ID); err != nil {
			t.Fatalf("Finish step %d: %v", step.Seq, err)
		}
	}

	if _, err := movementSvc.CompleteLine(ctx, line.ID, "op-2"); err != nil {
		t.Fatalf("CompleteLine: %v", err)
	}

	if _, err := qualitySvc.RecordOutgoingQC(ctx, line.ID, true, "", "coating within spec"); err != nil {
		t.Fatalf("RecordOutgoingQC: %v", err)
	}

	shipment, err := shipmentSvc.Ship(ctx, line.ID, 0)
	if err != nil {
		t.Fatalf("Ship: %v", err)
	}
	if shipment.Quantity != 200 {
		t.Fatalf("expected shipment of 200, got %v", shipment.Quantity)
	}

	disposition, err := dispositionSvc.Resolve(ctx, line.ID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if disposition != entity.DispositionShipped {
		t.Fatalf("expected shipped, got %s", disposition)
	}

	// The persisted stage log is a gap-free prefix of the canonical order.
	recs, err := stageSvc.Records(ctx, line.ID)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	want := []string{
		entity.StageGoodsReceipt,
		entity.StageIncomingQC,
		entity.StageProductionPlanned,
		entity.StageOperatorProcess,
		entity.StageOutgoingQC,
		entity.StageShipped,
	}
	if len(recs) != len(want) {
		t.Fatalf("expected %d stage records, got %d", len(want), len(recs))
	}
	for i, rec := range recs {
		if rec.Stage != want[i] {
			t.Fatalf("stage log out of order at %d: got %s, want %s", i, rec.Stage, want[i])
		}
	}

	movements, err := movementSvc.History(ctx, line.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(movements))
	}
	for _, m := range movements {
		if m.Open() || m.ElapsedMinutes == nil {
			t.Fatalf("expected closed movement with elapsed minutes, got %+v", m)
		}
	}
}
