package service

import (
	"github.com/redis/go-redis/v9"
	"github.com/simyalab/coatline/internal/config"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"gorm.io/gorm"
)

// Services wires every shop-floor service over one repository set.
type Services struct {
	Auth        *AuthService
	Stage       *StageService
	Order       *OrderService
	Quality     *QualityService
	Plan        *PlanService
	Movement    *MovementService
	Stock       *StockService
	Shipment    *ShipmentService
	Disposition *DispositionService
	Report      *ReportService
	Dashboard   *DashboardService
}

func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Services {
	stageSvc := NewStageService(db)

	return &Services{
		Auth:        NewAuthService(repos.User, rdb, cfg),
		Stage:       stageSvc,
		Order:       NewOrderService(repos.Order, repos.Stage, stageSvc, db),
		Quality:     NewQualityService(repos.Stage, stageSvc, db),
		Plan:        NewPlanService(repos.Plan, stageSvc),
		Movement:    NewMovementService(repos.Movement, repos.Plan, stageSvc, db),
		Stock:       NewStockService(repos.Stock, repos.Catalog),
		Shipment:    NewShipmentService(repos.Order, repos.Terminal, stageSvc, db),
		Disposition: NewDispositionService(repos.Stage, repos.Plan, repos.Terminal),
		Report:      NewReportService(repos.Stock, repos.Terminal, db),
		Dashboard:   NewDashboardService(repos.Catalog, db, rdb),
	}
}
