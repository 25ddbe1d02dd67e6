package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingapp "github.com/erpsync/backend/internal/application/billing"
	catalogapp "github.com/erpsync/backend/internal/application/catalog"
	partnerapp "github.com/erpsync/backend/internal/application/partner"
	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/erpsync/backend/internal/infrastructure/cache"
	"github.com/erpsync/backend/internal/infrastructure/config"
	"github.com/erpsync/backend/internal/infrastructure/logger"
	"github.com/erpsync/backend/internal/infrastructure/persistence"
	"github.com/erpsync/backend/internal/interfaces/http/handler"
	"github.com/erpsync/backend/internal/interfaces/http/middleware"
	"github.com/erpsync/backend/internal/interfaces/http/router"
)

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

	log.Info("Starting ERP sync backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection, with GORM logging routed through zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Entity stores
	departmentStore := persistence.NewDepartmentStore(db.DB)
	sectionStore := persistence.NewSectionStore(db.DB)
	familyStore := persistence.NewFamilyStore(db.DB)
	taxStore := persistence.NewTaxStore(db.DB)
	tariffStore := persistence.NewTariffStore(db.DB)
	articleStore := persistence.NewArticleStore(db.DB)
	articleLineStore := persistence.NewArticleLineStore(db.DB)
	priceStore := persistence.NewPriceStore(db.DB)
	customerStore := persistence.NewCustomerStore(db.DB)
	salespersonStore := persistence.NewSalespersonStore(db.DB)
	paymentMethodStore := persistence.NewPaymentMethodStore(db.DB)
	invoiceStore := persistence.NewInvoiceStore(db.DB)
	invoiceDetailStore := persistence.NewInvoiceDetailStore(db.DB)
	invoicePaymentStore := persistence.NewInvoicePaymentStore(db.DB)

	txManager := persistence.NewGormTxManager(db.DB)
	clock := shared.SystemClock{}

	// Application services
	hierarchyService := catalogapp.NewHierarchyService(
		departmentStore, sectionStore, familyStore, articleStore,
		txManager, clock, log)
	taxService := catalogapp.NewTaxService(taxStore, articleStore, txManager, clock, log)
	tariffService := catalogapp.NewTariffService(tariffStore, priceStore, txManager, clock, log)
	articleService := catalogapp.NewArticleService(catalogapp.ArticleServiceDeps{
		Articles:     articleStore,
		Lines:        articleLineStore,
		Prices:       priceStore,
		Taxes:        taxStore,
		Departments:  departmentStore,
		Sections:     sectionStore,
		Families:     familyStore,
		Tariffs:      tariffStore,
		InvoiceLines: invoiceDetailStore,
	}, txManager, clock, log)
	customerService := partnerapp.NewCustomerService(customerStore, invoiceStore, txManager, clock, log)
	salespersonService := partnerapp.NewSalespersonService(salespersonStore, invoiceStore, txManager, clock, log)
	paymentMethodService := partnerapp.NewPaymentMethodService(paymentMethodStore, invoicePaymentStore, txManager, clock, log)
	invoiceService := billingapp.NewInvoiceService(billingapp.InvoiceServiceDeps{
		Invoices:    invoiceStore,
		Details:     invoiceDetailStore,
		Payments:    invoicePaymentStore,
		Customers:   customerStore,
		Salespeople: salespersonStore,
		Methods:     paymentMethodStore,
		Articles:    articleStore,
		Taxes:       taxStore,
	}, txManager, clock, log)

	// Idempotency store for batch replay detection
	idempotencyStore, err := cache.NewIdempotencyStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()
	log.Info("Idempotency store ready",
		zap.String("backend", cfg.Sync.IdempotencyBackend),
		zap.Duration("ttl", cfg.Sync.IdempotencyTTL),
	)

	// HTTP handlers
	catalogHandler := handler.NewCatalogHandler(
		hierarchyService, taxService, tariffService, articleService,
		cfg.Sync.MaxBatchSize)
	partnerHandler := handler.NewPartnerHandler(
		customerService, salespersonService, paymentMethodService,
		cfg.Sync.MaxBatchSize)
	billingHandler := handler.NewBillingHandler(invoiceService)
	systemHandler := handler.NewSystemHandler(db, cfg.App.Name)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(middleware.Idempotency(idempotencyStore, cfg.Sync.IdempotencyTTL, log)),
	)
	r.Register(systemHandler).
		Register(catalogHandler).
		Register(partnerHandler).
		Register(billingHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Block until asked to stop, then drain in-flight syncs
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
