package repository

import (
	"context"
	"errors"

	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"gorm.io/gorm"
)

// OrderRepository order and order-line access
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindOrderByID loads an order with its lines and customer.
func (r *OrderRepository) FindOrderByID(ctx context.Context, id string) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Lines").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindOrderByCode looks an order up by its unique code (exact match).
func (r *OrderRepository) FindOrderByCode(ctx context.Context, code string) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Lines").
		Where("code = ?", code).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindLineByID loads a single order line with its order.
func (r *OrderRepository) FindLineByID(ctx context.Context, id string) (*entity.OrderLine, error) {
	var line entity.OrderLine
	err := r.db.WithContext(ctx).
		Preload("Order").
		Where("id = ?", id).
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}

// FindCustomerByName resolves a customer by exact name match.
func (r *OrderRepository) FindCustomerByName(ctx context.Context, name string) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// ListCustomers returns all customers ordered by name.
func (r *OrderRepository) ListCustomers(ctx context.Context) ([]entity.Customer, error) {
	var customers []entity.Customer
	err := r.db.WithContext(ctx).Order("name ASC").Find(&customers).Error
	return customers, err
}

// ListOrdersByCustomer returns a customer's orders, most recent first.
func (r *OrderRepository) ListOrdersByCustomer(ctx context.Context, customerID string) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}
