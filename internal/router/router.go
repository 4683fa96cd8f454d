package router

import (
	"fuelstation/internal/config"
	"fuelstation/internal/handler"
	"fuelstation/internal/middleware"
	"fuelstation/internal/model"
	"fuelstation/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services are the engine entry points the HTTP surface exposes.
type Services struct {
	Auth    service.AuthService
	Shifts  service.ShiftService
	Reports service.ReportService
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, svc Services) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler())

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(svc.Auth)
	employeesH := handler.NewEmployeesHandler(svc.Auth)
	shiftsH := handler.NewShiftsHandler(svc.Shifts)
	reportsH := handler.NewReportsHandler(svc.Reports, cfg.ReportStoragePath)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	accountant := middleware.RequireRole(model.RoleStationAccountant, model.RoleAdmin)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		shiftsH.Register(v1.Group("/shifts"), accountant)
		v1.GET("/shifts/:id/daily-summary", reportsH.DailySummary)
		v1.GET("/shifts/:id/daily-summary.pdf", reportsH.DailySummaryPDF)

		v1.GET("/stations/:id/history", shiftsH.History)
		v1.GET("/reports/:type", accountant, reportsH.Period)

		v1.POST("/employees", middleware.RequireRole(model.RoleAdmin), employeesH.Create)
		v1.POST("/jobs/:queue/replay", middleware.RequireRole(model.RoleAdmin), handler.ReplayDeadJobs(rdb))
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
