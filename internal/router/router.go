package router

import (
	"time"

	"github.com/supportta-projects/supporttabillbook-sub000/internal/config"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/handler"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/middleware"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/repository"
	"github.com/supportta-projects/supporttabillbook-sub000/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	branchRepo := repository.NewBranchRepository(db)
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)
	serialRepo := repository.NewSerialRepository(db)
	billRepo := repository.NewBillRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	stockSvc := service.NewStockService(stockRepo, branchRepo, productRepo, rdb)
	serialSvc := service.NewSerialService(serialRepo, productRepo, branchRepo, stockSvc, rdb)
	billingSvc := service.NewBillingService(billRepo, branchRepo, productRepo, stockRepo, stockSvc, serialSvc, rdb)

	// ── Handlers ─────────────────────────────────────────────────────────────
	stockH := handler.NewStockHandler(stockSvc)
	serialsH := handler.NewSerialsHandler(serialSvc)
	billingH := handler.NewBillingHandler(billingSvc)
	lookupH := handler.NewLookupHandler(productRepo, stockRepo, serialRepo, rdb,
		time.Duration(cfg.LookupCacheTTLSeconds)*time.Second)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Price/stock check — no auth required, heavily cached
	r.GET("/v1/lookup/:sku", lookupH.GetBySKU)

	// Protected routes. Roles: cashier, supervisor, admin — declared per-endpoint.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/bills", middleware.RequireRole("cashier", "supervisor", "admin"), billingH.CreateBill)
		v1.GET("/bills", middleware.RequireRole("cashier", "supervisor", "admin"), billingH.ListBills)
		v1.GET("/bills/:id", middleware.RequireRole("cashier", "supervisor", "admin"), billingH.GetBill)

		stock := v1.Group("/stock")
		{
			stock.POST("/movements", middleware.RequireRole("supervisor", "admin"), stockH.RecordMovement)
			stock.POST("/adjust", middleware.RequireRole("supervisor", "admin"), stockH.AdjustStock)
			stock.POST("/transfer", middleware.RequireRole("admin"), stockH.TransferStock)
			stock.GET("/ledger", middleware.RequireRole("supervisor", "admin"), stockH.GetLedger)
			stock.GET("/current", middleware.RequireRole("cashier", "supervisor", "admin"), stockH.GetCurrentStock)
			stock.GET("/alerts", middleware.RequireRole("supervisor", "admin"), stockH.GetLowStock)
		}

		v1.POST("/serials", middleware.RequireRole("supervisor", "admin"), serialsH.AddSerials)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
