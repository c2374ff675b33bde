package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"github.com/simyalab/coatline/internal/shopfloor/testutil"
)

type movementEnv struct {
	env      *testutil.TestEnv
	stageSvc *StageService
	planSvc  *PlanService
	svc      *MovementService
}

func newMovementEnv(t *testing.T) *movementEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	stageSvc := NewStageService(db)
	return &movementEnv{
		env:      &testutil.TestEnv{DB: db, T: t},
		stageSvc: stageSvc,
		planSvc:  NewPlanService(repos.Plan, stageSvc),
		svc:      NewMovementService(repos.Movement, repos.Plan, stageSvc, db),
	}
}

// plannedLine seeds a line past incoming QC with a plan of the given
// processes.
func (m *movementEnv) plannedLine(t *testing.T, processes ...string) (*entity.OrderLine, *entity.ProductionPlan) {
	t.Helper()
	ctx := context.Background()
	line := testutil.SeedLine(t, m.env.DB, 100)
	if _, err := m.stageSvc.Advance(ctx, line.ID, entity.StageGoodsReceipt, StageFacts{}); err != nil {
		t.Fatalf("goods receipt: %v", err)
	}
	if _, err := m.stageSvc.Advance(ctx, line.ID, entity.StageIncomingQC, StageFacts{}); err != nil {
		t.Fatalf("incoming QC: %v", err)
	}

	var slots []PlanSlot
	for _, name := range processes {
		proc, bath := testutil.SeedProcess(t, m.env.DB, name, 5, 30)
		slots = append(slots, PlanSlot{ProcessID: proc.ID, BathStepID: &bath.ID})
	}
	plan, err := m.planSvc.CreatePlan(ctx, line.ID, "user-1", slots)
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	return line, plan
}

func TestStartIsIdempotent(t *testing.T) {
	m := newMovementEnv(t)
	line, plan := m.plannedLine(t, "Zinc")
	step := plan.Steps[0]
	ctx := context.Background()

	first, err := m.svc.Start(ctx, line.ID, step.ID, "op-1")
	if err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if !first.Open() {
		t.Fatal("expected an open movement")
	}

	second, err := m.svc.Start(ctx, line.ID, step.ID, "op-2")
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("double start opened a second movement: %s vs %s", second.ID, first.ID)
	}

	var count int64
	m.env.DB.Model(&entity.Movement{}).Where("plan_step_id = ?", step.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 movement row, got %d", count)
	}
}

func TestStartRejectsForeignStep(t *testing.T) {
	m := newMovementEnv(t)
	lineA, planA := m.plannedLine(t, "Zinc")
	_, planB := m.plannedLine(t, "Nickel")
	_ = planA

	if _, err := m.svc.Start(context.Background(), lineA.ID, planB.Steps[0].ID, "op-1"); err == nil {
		t.Fatal("expected error starting another line's step")
	}
}

func TestFinishComputesElapsedServerSide(t *testing.T) {
	m := newMovementEnv(t)
	line, plan := m.plannedLine(t, "Zinc")
	step := plan.Steps[0]
	ctx := context.Background()

	started, err := m.svc.Start(ctx, line.ID, step.ID, "op-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Backdate the start so elapsed minutes are non-zero.
	past := time.Now().Add(-42 * time.Minute)
	if err := m.env.DB.Model(&entity.Movement{}).
		Where("id = ?", started.ID).
		Update("started_at", past).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	minutes, err := m.svc.Finish(ctx, line.ID, step.ID)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if minutes < 41 || minutes > 43 {
		t.Fatalf("expected ~42 elapsed minutes, got %d", minutes)
	}

	if _, err := m.svc.OpenMovement(ctx, step.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected no open movement, got %v", err)
	}
}

func TestFinishWithoutOpenMovement(t *testing.T) {
	m := newMovementEnv(t)
	line, plan := m.plannedLine(t, "Zinc")

	_, err := m.svc.Finish(context.Background(), line.ID, plan.Steps[0].ID)
	if !errors.Is(err, ErrNoOpenMovement) {
		t.Fatalf("expected ErrNoOpenMovement, got %v", err)
	}
}

func TestRestartAfterFinishOpensNewMovement(t *testing.T) {
	m := newMovementEnv(t)
	line, plan := m.plannedLine(t, "Zinc")
	step := plan.Steps[0]
	ctx := context.Background()

	first, err := m.svc.Start(ctx, line.ID, step.ID, "op-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := m.svc.Finish(ctx, line.ID, step.ID); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	second, err := m.svc.Start(ctx, line.ID, step.ID, "op-1")
	if err != nil {
		t.Fatalf("re-Start: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("expected a fresh movement after finish")
	}
}

func TestCompleteLineRequiresAllStepsClosed(t *testing.T) {
	m := newMovementEnv(t)
	line, plan := m.plannedLine(t, "Zinc", "Rinse")
	ctx := context.Background()

	// Steps may run in any order; start the second one first.
	if _, err := m.svc.Start(ctx, line.ID, plan.Steps[1].ID, "op-1"); err != nil {
		t.Fatalf("Start rinse: %v", err)
	}
	if _, err := m.svc.Finish(ctx, line.ID, plan.Steps[1].ID); err != nil {
		t.Fatalf("Finish rinse: %v", err)
	}

	_, err := m.svc.CompleteLine(ctx, line.ID, "op-1")
	if !errors.Is(err, ErrStepsIncomplete) {
		t.Fatalf("expected ErrStepsIncomplete, got %v", err)
	}

	if _, err := m.svc.Start(ctx, line.ID, plan.Steps[0].ID, "op-1"); err != nil {
		t.Fatalf("Start zinc: %v", err)
	}

	// A running step still blocks completion.
	if _, err := m.svc.CompleteLine(ctx, line.ID, "op-1"); !errors.Is(err, ErrStepsIncomplete) {
		t.Fatalf("expected ErrStepsIncomplete while zinc runs, got %v", err)
	}

	if _, err := m.svc.Finish(ctx, line.ID, plan.Steps[0].ID); err != nil {
		t.Fatalf("Finish zinc: %v", err)
	}

	rec, err := m.svc.CompleteLine(ctx, line.ID, "op-1")
	if err != nil {
		t.Fatalf("CompleteLine: %v", err)
	}
	if rec.Stage != entity.StageOperatorProcess {
		t.Fatalf("expected OPERATOR_PROCESS record, got %s", rec.Stage)
	}

	// Completion backfills the planning record so the log has no gap.
	passed, err := m.stageSvc.HasPassed(ctx, line.ID, entity.StageProductionPlanned)
	if err != nil {
		t.Fatalf("HasPassed: %v", err)
	}
	if !passed {
		t.Fatal("expected PRODUCTION_PLANNED record after completion")
	}
	var planned entity.StageRecord
	if err := m.env.DB.Where("order_line_id = ? AND stage = ?", line.ID, entity.StageProductionPlanned).
		First(&planned).Error; err != nil {
		t.Fatalf("expected persisted PRODUCTION_PLANNED record: %v", err)
	}
}

func TestConcurrentStartsOpenOneMovement(t *testing.T) {
	m := newMovementEnv(t)
	line, plan := m.plannedLine(t, "Zinc")
	step := plan.Steps[0]
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.svc.Start(ctx, line.ID, step.ID, "op-1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
	}

	var open int64
	m.env.DB.Model(&entity.Movement{}).
		Where("plan_step_id = ? AND ended_at IS NULL", step.ID).
		Count(&open)
	if open != 1 {
		t.Fatalf("expected exactly one open movement, got %d", open)
	}
}

func TestConcurrentFinishClosesOnce(t *testing.T) {
	m := newMovementEnv(t)
	line, plan := m.plannedLine(t, "Zinc")
	step := plan.Steps[0]
	ctx := context.Background()

	if _, err := m.svc.Start(ctx, line.ID, step.ID, "op-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	const workers = 6
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.svc.Finish(ctx, line.ID, step.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
		} else if !errors.Is(err, ErrNoOpenMovement) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one successful finish, got %d", wins)
	}
}

func TestFinishForeignLineLeavesMovementOpen(t *testing.T) {
	m := newMovementEnv(t)
	line, plan := m.plannedLine(t, "Zinc")
	other, _ := m.plannedLine(t, "Rinse")
	step := plan.Steps[0]
	ctx := context.Background()

	if _, err := m.svc.Start(ctx, line.ID, step.ID, "op-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := m.svc.Finish(ctx, other.ID, step.ID); !errors.Is(err, ErrNoOpenMovement) {
		t.Fatalf("expected ErrNoOpenMovement, got %v", err)
	}

	open, err := m.svc.OpenMovement(ctx, step.ID)
	if err != nil {
		t.Fatalf("OpenMovement: %v", err)
	}
	if !open.Open() {
		t.Fatal("finish naming the wrong line closed the movement")
	}
}

func TestStepHistoryListsRuns(t *testing.T) {
	m := newMovementEnv(t)
	line, plan := m.plannedLine(t, "Zinc")
	step := plan.Steps[0]
	ctx := context.Background()

	if _, err := m.svc.Start(ctx, line.ID, step.ID, "op-1"); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if _, err := m.svc.Finish(ctx, line.ID, step.ID); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if _, err := m.svc.Start(ctx, line.ID, step.ID, "op-2"); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	runs, err := m.svc.StepHistory(ctx, step.ID)
	if err != nil {
		t.Fatalf("StepHistory: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].Open() || runs[1].Open() {
		t.Fatalf("expected the newest run open and the first closed, got %+v", runs)
	}
}
