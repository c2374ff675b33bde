package service

import (
	"context"
	"testing"
	"time"

	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"github.com/simyalab/coatline/internal/shopfloor/testutil"
)

type dispositionEnv struct {
	env      *testutil.TestEnv
	stageSvc *StageService
	svc      *DispositionService
}

func newDispositionEnv(t *testing.T) *dispositionEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return &dispositionEnv{
		env:      &testutil.TestEnv{DB: db, T: t},
		stageSvc: NewStageService(db),
		svc:      NewDispositionService(repos.Stage, repos.Plan, repos.Terminal),
	}
}

func (d *dispositionEnv) expect(t *testing.T, lineID string, want entity.Disposition) {
	t.Helper()
	got, err := d.svc.Resolve(context.Background(), lineID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != want {
		t.Fatalf("expected disposition %s, got %s", want, got)
	}
}

func TestDispositionLadder(t *testing.T) {
	d := newDispositionEnv(t)
	line := testutil.SeedLine(t, d.env.DB, 100)
	ctx := context.Background()

	d.expect(t, line.ID, entity.DispositionPending)

	if _, err := d.stageSvc.Advance(ctx, line.ID, entity.StageGoodsReceipt, StageFacts{}); err != nil {
		t.Fatalf("goods receipt: %v", err)
	}
	d.expect(t, line.ID, entity.DispositionGoodsReceived)

	if _, err := d.stageSvc.Advance(ctx, line.ID, entity.StageIncomingQC, StageFacts{}); err != nil {
		t.Fatalf("incoming QC: %v", err)
	}
	d.expect(t, line.ID, entity.DispositionIncomingQCDone)

	// Plan existence alone moves the line to planned.
	proc, _ := testutil.SeedProcess(t, d.env.DB, "Zinc", 5, 20)
	plan := &entity.ProductionPlan{
		ID:          "plan-disp-0001",
		OrderLineID: line.ID,
		Steps:       []entity.PlanStep{{ID: "step-disp-0001", PlanID: "plan-disp-0001", Seq: 1, ProcessID: proc.ID}},
	}
	if err := d.env.DB.Create(plan).Error; err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	d.expect(t, line.ID, entity.DispositionPlanned)

	if _, err := d.stageSvc.Advance(ctx, line.ID, entity.StageOperatorProcess, StageFacts{}); err != nil {
		t.Fatalf("operator process: %v", err)
	}
	d.expect(t, line.ID, entity.DispositionInProcess)

	if _, err := d.stageSvc.Advance(ctx, line.ID, entity.StageOutgoingQC, StageFacts{}); err != nil {
		t.Fatalf("outgoing QC: %v", err)
	}
	d.expect(t, line.ID, entity.DispositionOutgoingQCDone)

	shipment := &entity.Shipment{
		ID:          "ship-disp-0001",
		OrderLineID: line.ID,
		Quantity:    100,
		ShippedAt:   time.Now(),
	}
	if err := d.env.DB.Create(shipment).Error; err != nil {
		t.Fatalf("seed shipment: %v", err)
	}
	d.expect(t, line.ID, entity.DispositionShipped)

	// A return outranks everything, including the shipment.
	ret := &entity.Return{
		ID:          "ret-disp-0001",
		OrderLineID: line.ID,
		Reason:      "coating flaking",
		Quantity:    100,
		ReturnedAt:  time.Now(),
	}
	if err := d.env.DB.Create(ret).Error; err != nil {
		t.Fatalf("seed return: %v", err)
	}
	d.expect(t, line.ID, entity.DispositionReturned)
}
