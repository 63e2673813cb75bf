package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/dms/backend/internal/application/billing"
	catalogapp "github.com/dms/backend/internal/application/catalog"
	feedapp "github.com/dms/backend/internal/application/feed"
	identityapp "github.com/dms/backend/internal/application/identity"
	inventoryapp "github.com/dms/backend/internal/application/inventory"
	partnerapp "github.com/dms/backend/internal/application/partner"
	printingapp "github.com/dms/backend/internal/application/printing"
	tradeapp "github.com/dms/backend/internal/application/trade"
	"github.com/dms/backend/internal/domain/feed"
	"github.com/dms/backend/internal/domain/identity"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/auth"
	"github.com/dms/backend/internal/infrastructure/cache"
	"github.com/dms/backend/internal/infrastructure/config"
	"github.com/dms/backend/internal/infrastructure/logger"
	"github.com/dms/backend/internal/infrastructure/persistence"
	printinginfra "github.com/dms/backend/internal/infrastructure/printing"
	"github.com/dms/backend/internal/infrastructure/printing/providers"
	"github.com/dms/backend/internal/infrastructure/telemetry"
	"github.com/dms/backend/internal/interfaces/http/handler"
	"github.com/dms/backend/internal/interfaces/http/middleware"
	"github.com/dms/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/dms/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			DMS Backend API
//	@version		1.0
//	@description	Dealership management backend for a single-location car dealer: vehicle inventory, customers, contracts, invoices, document printing and marketplace feeds.

//	@contact.name	API Support
//	@contact.url	https://github.com/dms/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting DMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Telemetry providers are no-ops unless telemetry is enabled
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:          true,
			LogFullSQL:       cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:         "postgresql",
			WithoutVariables: !cfg.Telemetry.DBLogFullSQL,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DBMetricsConfig{
		Enabled:            cfg.Telemetry.Enabled,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		defer dbMetrics.Stop()
	}

	// Stock and lead gauges collected on an interval
	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:         meterProvider.Meter("business"),
			Logger:        log,
			StockProvider: telemetry.NewGormStockMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			businessMetrics.StartPeriodicCollection(context.Background(), 5*time.Minute)
			defer businessMetrics.Stop()
		}
	}

	// Initialize repositories
	vehicleRepo := persistence.NewGormVehicleRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	leadRepo := persistence.NewGormLeadRepository(db.DB)
	contractRepo := persistence.NewGormContractRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	allocator := persistence.NewGormSequenceAllocator(db.DB)

	// Response cache for the public catalog: Redis with optional in-memory fallback
	cacheFactory := cache.NewResponseCacheFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.Cache.InMemoryFallback),
	)
	responseCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to create response cache", zap.Error(err))
	}

	// Token blacklist backs logout and forced token invalidation. Redis keeps
	// it shared across instances; fall back in-process when unavailable.
	var tokenBlacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		if !cfg.Cache.InMemoryFallback {
			log.Fatal("Failed to connect token blacklist to Redis", zap.Error(err))
		}
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		tokenBlacklist = redisBlacklist
	}

	// Document rendering pipeline
	templateStore, err := printinginfra.NewTemplateStore(&printinginfra.TemplateStoreConfig{
		ExternalDir: cfg.Printing.TemplateDir,
	})
	if err != nil {
		log.Fatal("Failed to load document templates", zap.Error(err))
	}
	templateEngine := printinginfra.NewTemplateEngine()

	var pdfRenderer printinginfra.PDFRenderer
	switch cfg.Printing.Renderer {
	case "wkhtmltopdf":
		pdfRenderer, err = printinginfra.NewWkhtmltopdfRenderer(&printinginfra.WkhtmltopdfConfig{
			BinaryPath:     cfg.Printing.WkhtmltopdfPath,
			DefaultTimeout: cfg.Printing.RenderTimeout,
		})
	default:
		pdfRenderer, err = printinginfra.NewChromedpRenderer(&printinginfra.ChromedpConfig{
			DefaultTimeout: cfg.Printing.RenderTimeout,
		})
	}
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()

	pdfStorage, err := printinginfra.NewFileSystemStorage(&printinginfra.FileSystemStorageConfig{
		BasePath: cfg.Printing.StoragePath,
		BaseURL:  cfg.Printing.StorageBaseURL,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF storage", zap.Error(err))
	}

	dealerInfo := printinginfra.DealerInfo{
		Name:    cfg.Dealer.Name,
		Address: cfg.Dealer.Address,
		Phone:   cfg.Dealer.Phone,
		Email:   cfg.Dealer.Email,
		Website: cfg.Dealer.Website,
		TaxID:   cfg.Dealer.TaxID,
		IBAN:    cfg.Dealer.IBAN,
		BIC:     cfg.Dealer.BIC,
	}

	providerRegistry := providers.NewDataProviderRegistry()
	providerRegistry.Register(providers.NewContractProvider(contractRepo, customerRepo, vehicleRepo, dealerInfo))
	providerRegistry.Register(providers.NewInvoiceProvider(invoiceRepo, customerRepo, contractRepo, dealerInfo))

	// Initialize application services
	vehicleService := inventoryapp.NewVehicleService(vehicleRepo, contractRepo, allocator, log)
	customerService := partnerapp.NewCustomerService(customerRepo, allocator, log)
	leadService := partnerapp.NewLeadService(leadRepo, customerRepo, vehicleRepo, allocator, log)
	contractService := tradeapp.NewContractService(contractRepo, vehicleRepo, customerRepo, allocator, log)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, customerRepo, contractRepo, vehicleRepo, allocator, log)
	catalogService := catalogapp.NewCatalogService(vehicleRepo, responseCache, cfg.Cache.CatalogTTL, log)
	exportService := feedapp.NewExportService(vehicleRepo, feed.DefaultRegistry(), cfg.Dealer.Name, log)
	documentService := printingapp.NewDocumentService(
		providerRegistry, templateStore, templateEngine, pdfRenderer, pdfStorage, log,
	)

	// Vehicle writes drop the cached public catalog pages
	vehicleService.SetCatalogInvalidator(catalogService)

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, tokenBlacklist, identityapp.DefaultAuthServiceConfig(), log)
	userService := identityapp.NewUserService(userRepo, log)

	// First-run admin account so the back office is reachable after deploy
	if err := seedAdminUser(context.Background(), userRepo, log); err != nil {
		log.Fatal("Failed to seed admin user", zap.Error(err))
	}

	// Initialize HTTP handlers
	vehicleHandler := handler.NewVehicleHandler(vehicleService)
	customerHandler := handler.NewCustomerHandler(customerService)
	leadHandler := handler.NewLeadHandler(leadService)
	contractHandler := handler.NewContractHandler(contractService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	catalogHandler := handler.NewCatalogHandler(catalogService, leadService)
	exportHandler := handler.NewExportHandler(exportService)
	documentHandler := handler.NewDocumentHandler(documentService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Request tracing, HTTP metrics and profiling labels
	engine.Use(middleware.Tracing())
	engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("http.server"), meterProvider.IsEnabled()))
	engine.Use(middleware.Profiling())

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Swagger documentation endpoint
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// JWT authentication for the back office. The public catalog and the
	// login/refresh endpoints stay open.
	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = tokenBlacklist
	jwtConfig.Logger = log
	authMiddleware := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	// The unauthenticated inquiry intake is the only public write; keep it
	// behind a per-IP rate limit.
	inquiryLimiter := middleware.NewRateLimiter(10, time.Minute)
	inquiryRateLimit := middleware.RateLimit(inquiryLimiter)

	// Login and refresh get a stricter per-IP budget.
	authLimiter := middleware.NewRateLimiter(5, time.Minute)
	authRateLimit := middleware.AuthRateLimit(authLimiter)

	// Register domain route groups
	r.Register(handler.CatalogRoutes(catalogHandler, inquiryRateLimit)).
		Register(handler.VehicleRoutes(vehicleHandler, authMiddleware)).
		Register(handler.CustomerRoutes(customerHandler, authMiddleware)).
		Register(handler.LeadRoutes(leadHandler, authMiddleware)).
		Register(handler.ContractRoutes(contractHandler, authMiddleware)).
		Register(handler.InvoiceRoutes(invoiceHandler, authMiddleware)).
		Register(handler.ExportRoutes(exportHandler, authMiddleware)).
		Register(handler.DocumentRoutes(documentHandler, authMiddleware)).
		Register(handler.AuthRoutes(authHandler, authRateLimit, authMiddleware)).
		Register(handler.UserRoutes(userHandler, authMiddleware)).
		Register(handler.SystemRoutes(systemHandler))

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(ctx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// seedAdminUser creates the initial admin account on an empty users table.
// The password comes from DMS_ADMIN_PASSWORD; without it the seed is skipped
// so a fresh database does not end up with a well-known credential.
func seedAdminUser(ctx context.Context, userRepo identity.UserRepository, log *zap.Logger) error {
	count, err := userRepo.Count(ctx, shared.Filter{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("DMS_ADMIN_PASSWORD")
	if password == "" {
		log.Warn("No users exist and DMS_ADMIN_PASSWORD is not set, skipping admin seed")
		return nil
	}

	admin, err := identity.NewUser("admin", password, identity.RoleAdmin)
	if err != nil {
		return err
	}
	if err := userRepo.Save(ctx, admin); err != nil {
		return err
	}

	log.Info("Seeded initial admin user", zap.String("username", admin.Username))
	return nil
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
