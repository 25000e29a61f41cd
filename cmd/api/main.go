package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"go-pos-inventory/internal/cache"
	"go-pos-inventory/internal/config"
	"go-pos-inventory/internal/handler"
	applog "go-pos-inventory/internal/logger"
	"go-pos-inventory/internal/middleware"
	"go-pos-inventory/internal/migrate"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/service"
	"go-pos-inventory/internal/ws"
	"go-pos-inventory/pkg/database"
	"go-pos-inventory/pkg/jwt"
)

func main() {
	// 1. Config & logger
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		panic(err)
	}
	log := applog.New(cfg.App.Env)
	slog.SetDefault(log)

	// 2. Schema, then database
	if err := migrate.Up(cfg.DSN(), log); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	db, err := database.Connect(database.Options{
		DSN:          cfg.DSN(),
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		LogSQL:       cfg.Database.LogSQL,
	})
	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	log.Info("database connection established")

	// 3. Optional Redis catalog cache
	var catalog service.CatalogCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis unavailable, catalog cache disabled", "err", err)
		} else {
			defer rc.Close()
			catalog = cache.NewCatalog(rc, cfg.Catalog.CacheTTL, log)
			log.Info("catalog cache enabled", "addr", cfg.Redis.Addr)
		}
	}

	// 4. WebSocket hub
	wsHub := ws.NewHub(log)
	go wsHub.Run()

	// 5. Wiring
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)

	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	rateRepo := repository.NewExchangeRateRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)
	cashRepo := repository.NewCashRepo(db)
	reportRepo := repository.NewReportRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	err = service.SeedAccessControl(seedCtx, privilegeRepo, roleRepo, userRepo, service.SeedOptions{
		AdminEmail:    cfg.Seed.AdminEmail,
		AdminPassword: cfg.Seed.AdminPassword,
	}, log)
	cancelSeed()
	if err != nil {
		log.Warn("seeding access control failed", "err", err)
	}

	saleService := service.NewSaleService(db, saleRepo, productRepo, catalog, wsHub, log, service.SaleOptions{
		Timeout:     cfg.Sale.Timeout,
		LockTimeout: cfg.Sale.LockTimeout,
	})
	rateService := service.NewExchangeRateService(db, rateRepo, productRepo, catalog, wsHub, log, cfg.Sale.LockTimeout)
	invService := service.NewInventoryService(service.InventoryDeps{
		DB:          db,
		Products:    productRepo,
		Movements:   movementRepo,
		Categories:  categoryRepo,
		Sales:       saleRepo,
		Catalog:     catalog,
		Hub:         wsHub,
		Log:         log,
		LockTimeout: cfg.Sale.LockTimeout,
	})
	categoryService := service.NewCategoryService(categoryRepo, catalog)
	cashService := service.NewCashService(cashRepo)
	dashService := service.NewDashboardService(reportRepo)
	authService := service.NewAuthService(userRepo, tokens)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo, saleRepo)

	// 6. Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORS.Origins}))

	registerRoutes(app, routes{
		db:       db,
		tokens:   tokens,
		userRepo: userRepo,
		metrics:  cfg.Metrics.Enabled,
		hub:      wsHub,
		sale:     handler.NewSaleHandler(saleService),
		rate:     handler.NewExchangeRateHandler(rateService),
		inv:      handler.NewInventoryHandler(invService),
		category: handler.NewCategoryHandler(categoryService),
		cash:     handler.NewCashHandler(cashService),
		dash:     handler.NewDashboardHandler(dashService),
		auth:     handler.NewAuthHandler(authService),
		user:     handler.NewUserHandler(userService),
		role:     handler.NewRoleHandler(roleRepo, privilegeRepo),
	})

	// 7. Graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.HTTP.Port); err != nil {
			log.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server forced to shutdown", "err", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server exited")
}

type routes struct {
	db       *gorm.DB
	tokens   *jwt.Manager
	userRepo repository.UserRepository
	metrics  bool
	hub      *ws.Hub

	sale     *handler.SaleHandler
	rate     *handler.ExchangeRateHandler
	inv      *handler.InventoryHandler
	category *handler.CategoryHandler
	cash     *handler.CashHandler
	dash     *handler.DashboardHandler
	auth     *handler.AuthHandler
	user     *handler.UserHandler
	role     *handler.RoleHandler
}

func registerRoutes(app *fiber.App, r routes) {
	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := r.db.DB()
		if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			return c.Status(503).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if r.metrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", r.auth.Login)
	auth.Post("/reset-password", r.auth.ResetPassword)
	auth.Post("/validate-token", r.auth.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(r.tokens, r.userRepo))
	protected.Post("/auth/logout", r.auth.Logout)

	// Point of sale
	protected.Get("/catalog", middleware.RequirePrivilege(model.PrivProductView), r.inv.GetCatalog)
	protected.Post("/sales", middleware.RequirePrivilege(model.PrivSaleCreate), r.sale.CommitSale)
	protected.Get("/sales", middleware.RequireAnyPrivilege(model.PrivSaleView, model.PrivDashboardView), r.sale.GetSales)
	protected.Get("/sales/:receipt", middleware.RequirePrivilege(model.PrivSaleView), r.sale.GetSale)

	// Products & ledger
	protected.Get("/products", middleware.RequirePrivilege(model.PrivProductView), r.inv.GetProducts)
	protected.Get("/products/:id", middleware.RequirePrivilege(model.PrivProductView), r.inv.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege(model.PrivProductManage), r.inv.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege(model.PrivProductManage), r.inv.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege(model.PrivProductManage), r.inv.DeleteProduct)
	protected.Get("/products/:id/stock-movements", middleware.RequirePrivilege(model.PrivStockAdjust), r.inv.GetMovements)
	protected.Post("/products/:id/stock-movements", middleware.RequirePrivilege(model.PrivStockAdjust), r.inv.CreateMovement)
	protected.Patch("/stock-movements/:id", middleware.RequirePrivilege(model.PrivStockAdjust), r.inv.UpdateMovement)

	// Categories
	protected.Get("/categories", middleware.RequirePrivilege(model.PrivProductView), r.category.GetCategories)
	protected.Post("/categories", middleware.RequirePrivilege(model.PrivCategoryManage), r.category.CreateCategory)
	protected.Put("/categories/:id", middleware.RequirePrivilege(model.PrivCategoryManage), r.category.UpdateCategory)
	protected.Delete("/categories/:id", middleware.RequirePrivilege(model.PrivCategoryManage), r.category.DeleteCategory)

	// Exchange rate
	protected.Get("/exchange-rates", middleware.RequirePrivilege(model.PrivProductView), r.rate.GetHistory)
	protected.Get("/exchange-rates/current", middleware.RequirePrivilege(model.PrivProductView), r.rate.GetCurrent)
	protected.Post("/exchange-rates", middleware.RequirePrivilege(model.PrivRateUpdate), r.rate.SetRate)

	// Cash drawer & reports
	protected.Get("/cash-transactions", middleware.RequirePrivilege(model.PrivCashView), r.cash.GetCashTransactions)
	protected.Post("/cash-transactions", middleware.RequirePrivilege(model.PrivCashCreate), r.cash.CreateCashTransaction)
	protected.Get("/dashboard/stats", middleware.RequirePrivilege(model.PrivDashboardView), r.dash.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", middleware.RequirePrivilege(model.PrivDashboardView), r.dash.GetStockMovement)
	protected.Get("/dashboard/financial-summary", middleware.RequirePrivilege(model.PrivDashboardView), r.dash.GetFinancialSummary)

	// Users & access control
	admin := protected.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.Get("/users", middleware.RequirePrivilege(model.PrivUserView), r.user.GetUsers)
	admin.Get("/users/:id", middleware.RequirePrivilege(model.PrivUserView), r.user.GetUser)
	admin.Post("/users", middleware.RequirePrivilege(model.PrivUserManage), r.user.CreateUser)
	admin.Put("/users/:id", middleware.RequirePrivilege(model.PrivUserManage), r.user.UpdateUser)
	admin.Delete("/users/:id", middleware.RequirePrivilege(model.PrivUserManage), r.user.DeleteUser)
	admin.Put("/users/:id/privileges", middleware.RequirePrivilege(model.PrivUserManage), r.user.UpdateUserPrivileges)
	admin.Get("/roles", r.role.GetRoles)
	admin.Get("/privileges", r.role.GetPrivileges)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		r.hub.Register <- c
		defer func() { r.hub.Unregister <- c }()

		for {
			// keep alive until the client goes away
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
