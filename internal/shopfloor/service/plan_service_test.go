package service

import (
	"context"
	"errors"
	"testing"

	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"github.com/simyalab/coatline/internal/shopfloor/testutil"
)

func newPlanService(t *testing.T) (*PlanService, *StageService, *testutil.TestEnv) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	stageSvc := NewStageService(db)
	return NewPlanService(repos.Plan, stageSvc), stageSvc, &testutil.TestEnv{DB: db, T: t}
}

func qcPassedLine(t *testing.T, env *testutil.TestEnv, stageSvc *StageService) *entity.OrderLine {
	t.Helper()
	line := testutil.SeedLine(t, env.DB, 100)
	ctx := context.Background()
	if _, err := stageSvc.Advance(ctx, line.ID, entity.StageGoodsReceipt, StageFacts{}); err != nil {
		t.Fatalf("goods receipt: %v", err)
	}
	if _, err := stageSvc.Advance(ctx, line.ID, entity.StageIncomingQC, StageFacts{}); err != nil {
		t.Fatalf("incoming QC: %v", err)
	}
	return line
}

func TestCreatePlanRequiresIncomingQC(t *testing.T) {
	svc, _, env := newPlanService(t)
	line := testutil.SeedLine(t, env.DB, 100)
	proc, _ := testutil.SeedProcess(t, env.DB, "Zinc", 10, 30)

	_, err := svc.CreatePlan(context.Background(), line.ID, "user-1", []PlanSlot{{ProcessID: proc.ID}})
	if !errors.Is(err, ErrNotQCApproved) {
		t.Fatalf("expected ErrNotQCApproved, got %v", err)
	}
}

func TestCreatePlanNumbersStepsAndDropsEmptySlots(t *testing.T) {
	svc, stageSvc, env := newPlanService(t)
	line := qcPassedLine(t, env, stageSvc)
	zinc, zincBath := testutil.SeedProcess(t, env.DB, "Zinc", 10, 30)
	rinse, _ := testutil.SeedProcess(t, env.DB, "Rinse", 1, 5)

	plan, err := svc.CreatePlan(context.Background(), line.ID, "user-1", []PlanSlot{
		{ProcessID: zinc.ID, BathStepID: &zincBath.ID},
		{}, // empty slot dropped
		{ProcessID: rinse.ID},
	})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(plan.Steps))
	}
	if plan.Steps[0].Seq != 1 || plan.Steps[1].Seq != 2 {
		t.Fatalf("expected dense 1-based seq, got %d,%d", plan.Steps[0].Seq, plan.Steps[1].Seq)
	}
	if plan.Steps[0].BathStepID == nil || *plan.Steps[0].BathStepID != zincBath.ID {
		t.Fatal("expected bath binding on first step")
	}
}

func TestCreatePlanCapsSteps(t *testing.T) {
	svc, stageSvc, env := newPlanService(t)
	line := qcPassedLine(t, env, stageSvc)
	proc, _ := testutil.SeedProcess(t, env.DB, "Zinc", 10, 30)

	slots := make([]PlanSlot, entity.MaxPlanSteps+1)
	for i := range slots {
		slots[i] = PlanSlot{ProcessID: proc.ID}
	}
	if _, err := svc.CreatePlan(context.Background(), line.ID, "user-1", slots); err == nil {
		t.Fatal("expected error above the step cap")
	}
}

func TestCreatePlanRejectsEmptyPlan(t *testing.T) {
	svc, stageSvc, env := newPlanService(t)
	line := qcPassedLine(t, env, stageSvc)

	if _, err := svc.CreatePlan(context.Background(), line.ID, "user-1", []PlanSlot{{}, {}}); err == nil {
		t.Fatal("expected error for plan without steps")
	}
}

func TestCreatePlanOnlyOncePerLine(t *testing.T) {
	svc, stageSvc, env := newPlanService(t)
	line := qcPassedLine(t, env, stageSvc)
	proc, _ := testutil.SeedProcess(t, env.DB, "Zinc", 10, 30)
	ctx := context.Background()

	if _, err := svc.CreatePlan(ctx, line.ID, "user-1", []PlanSlot{{ProcessID: proc.ID}}); err != nil {
		t.Fatalf("first CreatePlan: %v", err)
	}

	_, err := svc.CreatePlan(ctx, line.ID, "user-2", []PlanSlot{{ProcessID: proc.ID}})
	if !errors.Is(err, ErrPlanAlreadyExists) {
		t.Fatalf("expected ErrPlanAlreadyExists, got %v", err)
	}
}

func TestGetPlanLoadsOrderedSteps(t *testing.T) {
	svc, stageSvc, env := newPlanService(t)
	line := qcPassedLine(t, env, stageSvc)
	zinc, _ := testutil.SeedProcess(t, env.DB, "Zinc", 10, 30)
	rinse, _ := testutil.SeedProcess(t, env.DB, "Rinse", 1, 5)
	ctx := context.Background()

	if _, err := svc.CreatePlan(ctx, line.ID, "user-1", []PlanSlot{
		{ProcessID: zinc.ID},
		{ProcessID: rinse.ID},
	}); err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	plan, err := svc.GetPlan(ctx, line.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(plan.Steps))
	}
	if plan.Steps[0].ProcessID != zinc.ID || plan.Steps[1].ProcessID != rinse.ID {
		t.Fatalf("steps out of order: %+v", plan.Steps)
	}
}
