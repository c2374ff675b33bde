package repository

import (
	"context"
	"errors"

	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"gorm.io/gorm"
)

// CatalogRepository reference data: processes, bath steps, chemicals,
// operators, notices
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListProcesses returns all processes by name.
func (r *CatalogRepository) ListProcesses(ctx context.Context) ([]entity.Process, error) {
	var processes []entity.Process
	err := r.db.WithContext(ctx).Order("name ASC").Find(&processes).Error
	return processes, err
}

// FindProcessByID loads a process.
func (r *CatalogRepository) FindProcessByID(ctx context.Context, id string) (*entity.Process, error) {
	var p entity.Process
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListBathSteps returns bath stations in station order.
func (r *CatalogRepository) ListBathSteps(ctx context.Context) ([]entity.BathStep, error) {
	var baths []entity.BathStep
	err := r.db.WithContext(ctx).Order("sort_order ASC").Find(&baths).Error
	return baths, err
}

// ListChemicals returns all chemicals by name.
func (r *CatalogRepository) ListChemicals(ctx context.Context) ([]entity.Chemical, error) {
	var chemicals []entity.Chemical
	err := r.db.WithContext(ctx).Order("name ASC").Find(&chemicals).Error
	return chemicals, err
}

// FindChemicalByID loads a chemical.
func (r *CatalogRepository) FindChemicalByID(ctx context.Context, id string) (*entity.Chemical, error) {
	var c entity.Chemical
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListOperators returns active operators by name.
func (r *CatalogRepository) ListOperators(ctx context.Context) ([]entity.Operator, error) {
	var operators []entity.Operator
	err := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Order("full_name ASC").
		Find(&operators).Error
	return operators, err
}

// FindOperatorByID loads an operator.
func (r *CatalogRepository) FindOperatorByID(ctx context.Context, id string) (*entity.Operator, error) {
	var op entity.Operator
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&op).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &op, nil
}

// CountOperators returns the number of operators on record.
func (r *CatalogRepository) CountOperators(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Operator{}).Count(&count).Error
	return count, err
}

// ListActiveNotices returns active notices, newest first.
func (r *CatalogRepository) ListActiveNotices(ctx context.Context) ([]entity.Notice, error) {
	var notices []entity.Notice
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC").
		Find(&notices).Error
	return notices, err
}

// CreateNotice appends a notice.
func (r *CatalogRepository) CreateNotice(ctx context.Context, n *entity.Notice) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// DeactivateNotice soft-deactivates a notice.
func (r *CatalogRepository) DeactivateNotice(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Notice{}).
		Where("id = ?", id).
		Update("active", false).Error
}
