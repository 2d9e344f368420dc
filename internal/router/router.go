package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/tddymnbt/CRCMS-API/internal/config"
	"github.com/tddymnbt/CRCMS-API/internal/handler"
	"github.com/tddymnbt/CRCMS-API/internal/middleware"
	"github.com/tddymnbt/CRCMS-API/internal/repository"
	"github.com/tddymnbt/CRCMS-API/internal/service"
	"github.com/tddymnbt/CRCMS-API/internal/worker"
)

// New wires repositories, services and handlers into the HTTP router and
// returns the activity worker pool so the caller can start it.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, log zerolog.Logger) (*gin.Engine, *worker.Pool) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Repositories
	stockRepo := repository.NewStockRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	clientRepo := repository.NewClientRepository(db)
	miscRepo := repository.NewMiscRepository(db)
	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// Async audit trail
	dispatcher := worker.NewDispatcher(rdb, log)
	pool := worker.NewPool(rdb, activityRepo, cfg.WorkerPoolSize, log)

	// Services
	stockSvc := service.NewStockService(stockRepo, movementRepo, userRepo, dispatcher)
	productSvc := service.NewProductService(productRepo, stockRepo, saleRepo, miscRepo, clientRepo, statsRepo, stockSvc, dispatcher)
	saleSvc := service.NewSaleService(saleRepo, stockRepo, productRepo, clientRepo, stockSvc, dispatcher)
	clientSvc := service.NewClientService(clientRepo, saleRepo, dispatcher)
	miscSvc := service.NewMiscService(miscRepo, productRepo, dispatcher)
	statsSvc := service.NewStatsService(statsRepo)
	activitySvc := service.NewActivityService(activityRepo)
	authSvc := service.NewAuthService(userRepo, dispatcher, cfg.JWTSecret,
		time.Duration(cfg.JWTExpirationHours)*time.Hour)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	productH := handler.NewProductHandler(productSvc)
	saleH := handler.NewSaleHandler(saleSvc)
	stockH := handler.NewStockHandler(stockSvc)
	clientH := handler.NewClientHandler(clientSvc)
	statsH := handler.NewStatsHandler(statsSvc)
	activityH := handler.NewActivityHandler(activitySvc)

	r := gin.New()
	limiter := middleware.NewRateLimiter(300, time.Minute)
	r.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.CORS(),
		limiter.Handler(),
	)

	r.GET("/healthz", handler.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Tighter window on login to slow credential stuffing.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	v1 := r.Group("/v1")
	v1.POST("/auth/login", loginLimiter.Handler(), authH.Login)

	authed := v1.Group("")
	authed.Use(middleware.JWTAuth(cfg.JWTSecret))
	{
		authed.POST("/auth/users", middleware.RequireRole("admin"), authH.CreateUser)

		authed.POST("/products", productH.Create)
		authed.GET("/products", productH.List)
		authed.GET("/products/count", productH.Counts)
		authed.GET("/products/consignor/:clientId", productH.ConsignorItems)
		authed.GET("/products/:id", productH.Get)
		authed.PUT("/products/:id", productH.Update)
		authed.PATCH("/products/:id/stock", productH.UpdateStock)
		authed.DELETE("/products/:id", middleware.RequireRole("manager", "admin"), productH.Delete)

		authed.GET("/stocks/:id/movements", stockH.Movements)
		authed.GET("/stocks/:id/ledger", stockH.VerifyLedger)

		authed.POST("/sales", saleH.Create)
		authed.GET("/sales", saleH.List)
		authed.GET("/sales/:id", saleH.Get)
		authed.POST("/sales/payment", saleH.RecordPayment)
		authed.POST("/sales/cancel", middleware.RequireRole("manager", "admin"), saleH.Cancel)
		authed.PATCH("/sales/:id/due-date", saleH.ExtendDueDate)

		authed.POST("/clients", clientH.Create)
		authed.GET("/clients", clientH.List)
		authed.GET("/clients/:id", clientH.Get)
		authed.PUT("/clients/:id", clientH.Update)
		authed.DELETE("/clients/:id", middleware.RequireRole("manager", "admin"), clientH.Delete)

		registerLookup(authed, handler.NewMiscHandler(miscSvc, service.KindCategory), "/categories")
		registerLookup(authed, handler.NewMiscHandler(miscSvc, service.KindBrand), "/brands")
		registerLookup(authed, handler.NewMiscHandler(miscSvc, service.KindAuthenticator), "/authenticators")

		authed.GET("/stats/sales", statsH.Sales)
		authed.GET("/stats/customer-frequency", statsH.CustomerFrequency)

		authed.GET("/activity-logs", activityH.List)
	}

	return r, pool
}

func registerLookup(g *gin.RouterGroup, h *handler.MiscHandler, base string) {
	g.POST(base, h.Create)
	g.GET(base, h.List)
	g.GET(base+"/:id", h.Get)
	g.PUT(base+"/:id", h.Update)
	g.DELETE(base+"/:id", h.Delete)
}
