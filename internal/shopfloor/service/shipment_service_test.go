package service

import (
	"context"
	"errors"
	"testing"

	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"github.com/simyalab/coatline/internal/shopfloor/testutil"
)

type shipmentEnv struct {
	env      *testutil.TestEnv
	stageSvc *StageService
	svc      *ShipmentService
}

func newShipmentEnv(t *testing.T) *shipmentEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	stageSvc := NewStageService(db)
	return &shipmentEnv{
		env:      &testutil.TestEnv{DB: db, T: t},
		stageSvc: stageSvc,
		svc:      NewShipmentService(repos.Order, repos.Terminal, stageSvc, db),
	}
}

func (s *shipmentEnv) qcDoneLine(t *testing.T) *entity.OrderLine {
	t.Helper()
	line := testutil.SeedLine(t, s.env.DB, 100)
	ctx := context.Background()
	stages := []string{
		entity.StageGoodsReceipt,
		entity.StageIncomingQC,
		entity.StageProductionPlanned,
		entity.StageOperatorProcess,
		entity.StageOutgoingQC,
	}
	for _, stage := range stages {
		if _, err := s.stageSvc.Advance(ctx, line.ID, stage, StageFacts{}); err != nil {
			t.Fatalf("advance %s: %v", stage, err)
		}
	}
	return line
}

func TestShipDefaultsToLineQuantity(t *testing.T) {
	s := newShipmentEnv(t)
	line := s.qcDoneLine(t)

	shipment, err := s.svc.Ship(context.Background(), line.ID, 0)
	if err != nil {
		t.Fatalf("Ship: %v", err)
	}
	if shipment.Quantity != 100 {
		t.Fatalf("expected shipment of 100, got %v", shipment.Quantity)
	}
}

func TestShipRequiresOutgoingQC(t *testing.T) {
	s := newShipmentEnv(t)
	line := testutil.SeedLine(t, s.env.DB, 100)

	_, err := s.svc.Ship(context.Background(), line.ID, 0)
	if !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}

	// Rejected shipment leaves no shipment row behind.
	var count int64
	s.env.DB.Model(&entity.Shipment{}).Where("order_line_id = ?", line.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected no shipment rows, got %d", count)
	}
}

func TestShipOnlyOnce(t *testing.T) {
	s := newShipmentEnv(t)
	line := s.qcDoneLine(t)
	ctx := context.Background()

	if _, err := s.svc.Ship(ctx, line.ID, 0); err != nil {
		t.Fatalf("Ship: %v", err)
	}
	if _, err := s.svc.Ship(ctx, line.ID, 0); !errors.Is(err, ErrAlreadyPassed) {
		t.Fatalf("expected ErrAlreadyPassed, got %v", err)
	}
}

func TestReturnAfterShipment(t *testing.T) {
	s := newShipmentEnv(t)
	line := s.qcDoneLine(t)
	ctx := context.Background()

	if _, err := s.svc.Ship(ctx, line.ID, 0); err != nil {
		t.Fatalf("Ship: %v", err)
	}

	ret, err := s.svc.RecordReturn(ctx, line.ID, "op-1", "coating flaking", 20, "edge blisters", true)
	if err != nil {
		t.Fatalf("RecordReturn: %v", err)
	}
	if ret.Quantity != 20 || !ret.Reprocess {
		t.Fatalf("unexpected return: %+v", ret)
	}

	returns, err := s.svc.ListReturns(ctx, 10)
	if err != nil {
		t.Fatalf("ListReturns: %v", err)
	}
	if len(returns) != 1 || returns[0].Reason != "coating flaking" {
		t.Fatalf("expected one return, got %+v", returns)
	}
}
