package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/simyalab/coatline/internal/config"
	"github.com/simyalab/coatline/internal/middleware"
	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"github.com/simyalab/coatline/internal/shopfloor/service"
)

// Handlers wires the HTTP surface over the service set.
type Handlers struct {
	Auth      *AuthHandler
	Order     *OrderHandler
	Quality   *QualityHandler
	Plan      *PlanHandler
	Operator  *OperatorHandler
	Shipment  *ShipmentHandler
	Stock     *StockHandler
	Catalog   *CatalogHandler
	Report    *ReportHandler
	Dashboard *DashboardHandler
}

func NewHandlers(svc *service.Services, repos *repository.Repositories) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(svc.Auth),
		Order:     NewOrderHandler(svc.Order, svc.Stage, svc.Disposition),
		Quality:   NewQualityHandler(svc.Quality),
		Plan:      NewPlanHandler(svc.Plan),
		Operator:  NewOperatorHandler(svc.Movement),
		Shipment:  NewShipmentHandler(svc.Shipment),
		Stock:     NewStockHandler(svc.Stock),
		Catalog:   NewCatalogHandler(repos.Catalog),
		Report:    NewReportHandler(svc.Report),
		Dashboard: NewDashboardHandler(svc.Dashboard),
	}
}

// Response is the envelope every endpoint returns.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// ServiceError maps domain sentinel errors onto the response envelope.
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrOutOfOrder),
		errors.Is(err, service.ErrStageNotReady),
		errors.Is(err, service.ErrNotQCApproved),
		errors.Is(err, service.ErrStepsIncomplete):
		Error(c, 42200, err.Error())
	case errors.Is(err, service.ErrAlreadyPassed),
		errors.Is(err, service.ErrDuplicateOrderCode),
		errors.Is(err, service.ErrPlanAlreadyExists),
		errors.Is(err, service.ErrInsufficientStock):
		Conflict(c, err.Error())
	case errors.Is(err, service.ErrMissingDrawing),
		errors.Is(err, service.ErrNoOpenMovement):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		Unauthorized(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID reads the authenticated user ID set by the JWT middleware.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetLimit reads a bounded ?limit= query parameter.
func GetLimit(c *gin.Context, def int) int {
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 500 {
			return v
		}
	}
	return def
}

// RegisterRoutes mounts the API under /api/v1.
func RegisterRoutes(r *gin.Engine, h *Handlers, cfg *config.Config) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.POST("/auth/register", middleware.RequireRole(entity.RoleAdmin), h.Auth.Register)

			orders := authorized.Group("/orders")
			{
				orders.POST("", h.Order.Create)
				orders.GET("/:id", h.Order.Get)
				orders.GET("/by-code/:code", h.Order.GetByCode)
			}

			lines := authorized.Group("/lines")
			{
				lines.GET("/:id", h.Order.GetLine)
				lines.GET("/:id/stages", h.Order.Stages)
				lines.GET("/:id/disposition", h.Order.Disposition)
				lines.POST("/:id/receipt", h.Order.GoodsReceipt)
				lines.POST("/:id/incoming-qc", h.Quality.IncomingQC)
				lines.POST("/:id/outgoing-qc", h.Quality.OutgoingQC)
				lines.GET("/:id/losses", h.Quality.Losses)
				lines.POST("/:id/plan", h.Plan.Create)
				lines.GET("/:id/plan", h.Plan.Get)
				lines.POST("/:id/complete", h.Operator.CompleteLine)
				lines.GET("/:id/movements", h.Operator.History)
				lines.POST("/:id/ship", h.Shipment.Ship)
				lines.POST("/:id/return", h.Shipment.RecordReturn)
			}

			authorized.GET("/worklists/:stage", h.Order.Worklist)

			customers := authorized.Group("/customers")
			{
				customers.GET("", h.Order.ListCustomers)
				customers.GET("/:id/orders", h.Order.CustomerOrders)
			}

			steps := authorized.Group("/steps")
			{
				steps.POST("/:id/start", h.Operator.Start)
				steps.POST("/:id/finish", h.Operator.Finish)
				steps.GET("/:id/open", h.Operator.Open)
				steps.GET("/:id/movements", h.Operator.StepHistory)
			}

			authorized.GET("/shipments", h.Shipment.ListShipments)
			authorized.GET("/returns", h.Shipment.ListReturns)

			stocks := authorized.Group("/stocks")
			{
				stocks.GET("", h.Stock.List)
				stocks.GET("/alerts", h.Stock.Alerts)
				stocks.GET("/:chemicalId", h.Stock.Get)
				stocks.POST("/:chemicalId/consume", h.Stock.Consume)
				stocks.POST("/:chemicalId/replenish", middleware.RequireRole(entity.RoleAdmin), h.Stock.Replenish)
			}

			catalog := authorized.Group("")
			{
				catalog.GET("/processes", h.Catalog.ListProcesses)
				catalog.GET("/bath-steps", h.Catalog.ListBathSteps)
				catalog.GET("/chemicals", h.Catalog.ListChemicals)
				catalog.GET("/operators", h.Catalog.ListOperators)
			}

			reports := authorized.Group("/reports")
			{
				reports.GET("/consumption", h.Report.Consumption)
				reports.GET("/consumption/export", h.Report.ConsumptionExport)
				reports.GET("/operators", h.Report.OperatorTotals)
				reports.GET("/baths", h.Report.BathStats)
				reports.GET("/returns", h.Report.Returns)
				reports.GET("/quantities", h.Report.QuantityPyramid)
			}

			authorized.GET("/dashboard/stats", h.Dashboard.Stats)
			notices := authorized.Group("/notices")
			{
				notices.GET("", h.Dashboard.List)
				notices.POST("", middleware.RequireRole(entity.RoleAdmin), h.Dashboard.Post)
				notices.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.Dashboard.Retire)
			}
		}
	}
}
