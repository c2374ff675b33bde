package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"gorm.io/gorm"
)

const (
	dashboardCacheKey = "dashboard:stats"
	dashboardCacheTTL = 30 * time.Second
)

// DashboardService aggregates shop-floor counters for the landing view.
type DashboardService struct {
	catalogRepo *repository.CatalogRepository
	db          *gorm.DB
	rdb         *redis.Client
}

func NewDashboardService(catalogRepo *repository.CatalogRepository, db *gorm.DB, rdb *redis.Client) *DashboardService {
	return &DashboardService{
		catalogRepo: catalogRepo,
		db:          db,
		rdb:         rdb,
	}
}

// DashboardStats is the counter block shown on the dashboard.
type DashboardStats struct {
	TotalOrders    int64 `json:"total_orders"`
	ActiveLines    int64 `json:"active_lines"`
	DueToday       int64 `json:"due_today"`
	Overdue        int64 `json:"overdue"`
	Operators      int64 `json:"operators"`
	OpenMovements  int64 `json:"open_movements"`
	CriticalStocks int64 `json:"critical_stocks"`
}

// Stats returns the dashboard counters. Served from Redis when a fresh
// snapshot exists; recomputed and re-cached otherwise. Cache failures
// are ignored, the database is the fallback.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	if cached, err := s.rdb.Get(ctx, dashboardCacheKey).Result(); err == nil && cached != "" {
		var stats DashboardStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		s.rdb.Set(ctx, dashboardCacheKey, payload, dashboardCacheTTL)
	}
	return stats, nil
}

func (s *DashboardService) compute(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&entity.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	// Lines not yet shipped or returned.
	if err := db.Model(&entity.OrderLine{}).
		Where("id NOT IN (?)", db.Model(&entity.Shipment{}).Select("order_line_id")).
		Where("id NOT IN (?)", db.Model(&entity.Return{}).Select("order_line_id")).
		Count(&stats.ActiveLines).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	// Day boundaries in the shop's local time, not UTC midnight.
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.Add(24 * time.Hour)
	if err := db.Model(&entity.Order{}).
		Where("due_date >= ? AND due_date < ?", today, tomorrow).
		Count(&stats.DueToday).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	if err := db.Model(&entity.Order{}).
		Where("due_date < ?", today).
		Where("id IN (?)", db.Model(&entity.OrderLine{}).Select("order_id").
			Where("id NOT IN (?)", db.Model(&entity.Shipment{}).Select("order_line_id"))).
		Count(&stats.Overdue).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	operators, err := s.catalogRepo.CountOperators(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	stats.Operators = operators

	if err := db.Model(&entity.Movement{}).
		Where("ended_at IS NULL").
		Count(&stats.OpenMovements).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	if err := db.Model(&entity.ChemicalStock{}).
		Joins("JOIN chemicals ON chemicals.id = chemical_stocks.chemical_id").
		Where("chemical_stocks.on_hand < chemicals.min_threshold").
		Count(&stats.CriticalStocks).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return stats, nil
}

// Notices lists the active notice board entries, newest first.
func (s *DashboardService) Notices(ctx context.Context) ([]entity.Notice, error) {
	return s.catalogRepo.ListActiveNotices(ctx)
}

// PostNotice publishes a notice and invalidates the stats cache so the
// board refreshes promptly.
func (s *DashboardService) PostNotice(ctx context.Context, message string) (*entity.Notice, error) {
	notice := &entity.Notice{
		ID:      uuid.New().String()[:32],
		Message: message,
		Active:  true,
	}
	if err := s.catalogRepo.CreateNotice(ctx, notice); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	s.rdb.Del(ctx, dashboardCacheKey)
	return notice, nil
}

// RetireNotice deactivates a notice.
func (s *DashboardService) RetireNotice(ctx context.Context, id string) error {
	if err := s.catalogRepo.DeactivateNotice(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}
