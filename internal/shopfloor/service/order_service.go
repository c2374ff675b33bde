package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderService order intake and goods receipt
type OrderService struct {
	orderRepo *repository.OrderRepository
	stageRepo *repository.StageRepository
	stageSvc  *StageService
	db        *gorm.DB
}

func NewOrderService(orderRepo *repository.OrderRepository, stageRepo *repository.StageRepository, stageSvc *StageService, db *gorm.DB) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		stageRepo: stageRepo,
		stageSvc:  stageSvc,
		db:        db,
	}
}

// CreateOrderRequest is the intake payload: one order with one part line.
type CreateOrderRequest struct {
	CustomerName    string     `json:"customer_name" binding:"required"`
	OrderCode       string     `json:"order_code"`
	DueDate         *time.Time `json:"due_date"`
	InvoiceAmount   *float64   `json:"invoice_amount"`
	PartName        string     `json:"part_name" binding:"required"`
	PartType        string     `json:"part_type"`
	Quantity        float64    `json:"quantity" binding:"required"`
	PartNumber      string     `json:"part_number"`
	Revision        string     `json:"revision"`
	CoatingStandard string     `json:"coating_standard"`
	DrawingRef      string     `json:"drawing_ref"`
	PhotoRef        string     `json:"photo_ref"`
}

// CreateOrder resolves the customer by exact name (creating one with a
// generated code when unknown) and persists order plus line in a single
// transaction. A line cannot exist without a drawing reference.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*entity.Order, error) {
	if req.DrawingRef == "" {
		return nil, ErrMissingDrawing
	}

	code := req.OrderCode
	if code == "" {
		code = fmt.Sprintf("ORD-%d", time.Now().UnixMilli())
	}

	var order *entity.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer entity.Customer
		err := tx.Where("name = ?", req.CustomerName).First(&customer).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			customer = entity.Customer{
				ID:   uuid.New().String()[:32],
				Code: fmt.Sprintf("C-%06d", time.Now().UnixMilli()%1000000),
				Name: req.CustomerName,
			}
			// A concurrent intake may have created the same customer
			// between the lookup and the insert. DoNothing keeps the
			// transaction alive so we can re-resolve instead of
			// misreporting the conflict as a duplicate order code.
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&customer)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				if err := tx.Where("name = ?", req.CustomerName).First(&customer).Error; err != nil {
					return fmt.Errorf("resolve customer %s: %v", req.CustomerName, err)
				}
			}
		} else if err != nil {
			return err
		}

		order = &entity.Order{
			ID:            uuid.New().String()[:32],
			Code:          code,
			CustomerID:    customer.ID,
			DueDate:       req.DueDate,
			InvoiceAmount: req.InvoiceAmount,
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		line := &entity.OrderLine{
			ID:              uuid.New().String()[:32],
			OrderID:         order.ID,
			PartName:        req.PartName,
			PartType:        req.PartType,
			Quantity:        req.Quantity,
			PartNumber:      req.PartNumber,
			Revision:        req.Revision,
			CoatingStandard: req.CoatingStandard,
			DrawingRef:      req.DrawingRef,
			PhotoRef:        req.PhotoRef,
		}
		if err := tx.Create(line).Error; err != nil {
			return err
		}

		order.Customer = &customer
		order.Lines = []entity.OrderLine{*line}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateOrderCode, code)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return order, nil
}

// RecordGoodsReceipt marks the line received: advances the stage gate to
// GOODS_RECEIPT and applies the one-time quantity correction and photo
// reference, all in one transaction. A retry hits AlreadyPassed and the
// correction is not applied twice.
func (s *OrderService) RecordGoodsReceipt(ctx context.Context, lineID, operatorID string, correctedQty *float64, photoRef string) (*entity.StageRecord, error) {
	line, err := s.orderRepo.FindLineByID(ctx, lineID)
	if err != nil {
		return nil, err
	}

	var rec *entity.StageRecord
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qty := line.Quantity
		if correctedQty != nil && !line.QtyCorrected {
			qty = *correctedQty
		}

		var aerr error
		rec, aerr = s.stageSvc.AdvanceIn(ctx, tx, lineID, entity.StageGoodsReceipt, StageFacts{
			OperatorID: &operatorID,
			Quantity:   qty,
		})
		if aerr != nil {
			return aerr
		}

		changed := false
		if correctedQty != nil && !line.QtyCorrected {
			line.Quantity = *correctedQty
			line.QtyCorrected = true
			changed = true
		}
		if photoRef != "" {
			line.PhotoRef = photoRef
			changed = true
		}
		if changed {
			return tx.Save(line).Error
		}
		return nil
	})
	if err != nil {
		return rec, err
	}
	return rec, nil
}

// GetOrder loads an order with customer and lines.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	return s.orderRepo.FindOrderByID(ctx, id)
}

// GetOrderByCode looks up an order by its unique code.
func (s *OrderService) GetOrderByCode(ctx context.Context, code string) (*entity.Order, error) {
	return s.orderRepo.FindOrderByCode(ctx, code)
}

// GetLine loads an order line with its order.
func (s *OrderService) GetLine(ctx context.Context, lineID string) (*entity.OrderLine, error) {
	return s.orderRepo.FindLineByID(ctx, lineID)
}

// Customers lists the customer directory, or resolves a single customer
// by exact name when one is given.
func (s *OrderService) Customers(ctx context.Context, name string) ([]entity.Customer, error) {
	if name != "" {
		customer, err := s.orderRepo.FindCustomerByName(ctx, name)
		if err != nil {
			return nil, err
		}
		return []entity.Customer{*customer}, nil
	}
	return s.orderRepo.ListCustomers(ctx)
}

// CustomerOrders returns a customer's orders with their lines.
func (s *OrderService) CustomerOrders(ctx context.Context, customerID string) ([]entity.Order, error) {
	return s.orderRepo.ListOrdersByCustomer(ctx, customerID)
}

// Worklist returns the lines waiting for the given stage. For
// PRODUCTION_PLANNED the list is lines past incoming QC without a plan.
func (s *OrderService) Worklist(ctx context.Context, stage string) ([]entity.OrderLine, error) {
	if entity.StageRank(stage) < 0 {
		return nil, fmt.Errorf("unknown stage %q", stage)
	}
	if stage == entity.StageProductionPlanned {
		return s.stageRepo.LinesPendingPlan(ctx)
	}
	return s.stageRepo.LinesPendingStage(ctx, stage)
}
