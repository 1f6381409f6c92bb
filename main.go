package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"kirana-service/internal/cache"
	"kirana-service/internal/config"
	"kirana-service/internal/database"
	"kirana-service/internal/handlers"
	"kirana-service/internal/middleware"
	"kirana-service/internal/models"
	"kirana-service/internal/nlp"
	"kirana-service/internal/render"
	"kirana-service/internal/repository"
	"kirana-service/internal/repository/memory"
	"kirana-service/internal/resolver"
	"kirana-service/internal/routes"
	"kirana-service/internal/services"
	"kirana-service/internal/whatsapp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	// ===== backing stores =====
	var (
		postgresDB      *database.PostgresDB
		productRepo     repository.ProductRepository
		transactionRepo repository.TransactionRepository
		udharRepo       repository.UdharRepository
		shopRepo        repository.ShopRepository
		memStore        *memory.Store
	)
	if cfg.Database.URL != "" {
		postgresDB, err = database.NewPostgresDB(
			cfg.Database.URL,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
			logger,
		)
		if err != nil {
			logger.Fatal("postgres connection failed", zap.Error(err))
		}
		defer postgresDB.Close()

		if productRepo, err = repository.NewProductRepository(postgresDB.DB); err != nil {
			logger.Fatal("product repository init failed", zap.Error(err))
		}
		if transactionRepo, err = repository.NewTransactionRepository(postgresDB.DB); err != nil {
			logger.Fatal("transaction repository init failed", zap.Error(err))
		}
		if udharRepo, err = repository.NewUdharRepository(postgresDB.DB); err != nil {
			logger.Fatal("udhar repository init failed", zap.Error(err))
		}
		if shopRepo, err = repository.NewShopRepository(postgresDB.DB); err != nil {
			logger.Fatal("shop repository init failed", zap.Error(err))
		}
	} else {
		logger.Warn("no DATABASE_URL configured, running on the in-memory store")
		memStore = memory.New()
		productRepo = memStore.Products()
		transactionRepo = memStore.Transactions()
		udharRepo = memStore.Udhar()
		shopRepo = memStore.Shops()
	}

	redisDB, err := database.NewRedisDB(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		// The cache degrades to L1-only; the service still works.
		logger.Warn("redis unavailable, running with in-process cache only", zap.Error(err))
		redisDB = nil
	} else {
		defer redisDB.Close()
	}

	// ===== cache, resolver, services =====
	catalogCache := cache.NewCatalogCache(redisConn(redisDB), 1000, 5*time.Minute, logger)
	productResolver := resolver.New(productRepo, catalogCache, logger)

	reportService := services.NewReportService(productRepo, transactionRepo, cfg.Inventory.ExpiryWindowDays, logger)
	udharService := services.NewUdharService(udharRepo, logger)
	commandService := services.NewCommandService(
		productRepo, transactionRepo, productResolver, catalogCache,
		reportService, udharService,
		cfg.Inventory.DefaultLowStockThreshold, logger,
	)
	monitoringService := services.NewMonitoringService(logger, cfg, redisConn(redisDB), dbConn(postgresDB), catalogCache)

	// ===== NLP pipeline =====
	var llm nlp.CommandParser
	var transcriber *nlp.Transcriber
	if cfg.OpenAI.APIKey != "" {
		llm = nlp.NewLLMClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, 30*time.Second, logger)
		transcriber = nlp.NewTranscriber(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, 60*time.Second, logger)
	} else {
		logger.Warn("no OpenAI key configured, LLM fallback and voice transcription disabled")
	}
	normalizer := nlp.NewNormalizer()
	classifier := nlp.NewClassifier(llm, logger)

	sender := whatsapp.NewSender(cfg.WhatsApp, logger)
	renderer := render.New()

	proc := services.NewProcessor(
		shopRepo, normalizer, classifier, transcriber,
		sender, commandService, renderer, monitoringService, logger,
	)

	// ===== optional demo seed =====
	if cfg.Inventory.SeedDemoCatalog {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := services.SeedDemoCatalog(ctx, productRepo, cfg.Inventory.DemoShopID, logger); err != nil {
			logger.Error("demo catalog seed failed", zap.Error(err))
		}
		cancel()

		// On the in-memory store a shop and owner must exist before the
		// webhook will process anything.
		if memStore != nil && cfg.Inventory.DemoOwnerPhone != "" {
			memStore.AddShop(&models.Shop{ShopID: cfg.Inventory.DemoShopID, Name: "Demo Kirana", OwnerPhone: cfg.Inventory.DemoOwnerPhone, Active: true})
			memStore.AddUser(&models.User{UserID: "demo-owner", Phone: cfg.Inventory.DemoOwnerPhone, ShopID: cfg.Inventory.DemoShopID, Role: models.RoleOwner, Active: true})
			logger.Info("demo shop registered", zap.String("phone", cfg.Inventory.DemoOwnerPhone))
		}
	}

	// ===== HTTP =====
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(logger))

	webhookHandler := handlers.NewWebhookHandler(proc, cfg.WhatsApp, logger)
	opsHandler := handlers.NewOpsHandler(productRepo, transactionRepo, shopRepo, commandService, udharService, catalogCache, logger)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService, logger)
	healthChecker := middleware.NewHealthChecker(postgresDB, redisDB, logger)

	routes.SetupRoutes(router, webhookHandler, opsHandler, monitoringHandler, healthChecker)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		middleware.ServerInfo(cfg.Server.Port, logger)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *zap.Logger {
	zapCfg := zap.NewProductionConfig()
	if cfg.Server.GinMode == "debug" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.Logging.Level); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := zapCfg.Build()
	if err != nil {
		panic("logger init failed: " + err.Error())
	}
	return logger
}

// redisConn unwraps the client, tolerating a nil RedisDB.
func redisConn(db *database.RedisDB) *redis.Client {
	if db == nil {
		return nil
	}
	return db.Client
}

// dbConn unwraps the pool, tolerating a nil PostgresDB.
func dbConn(db *database.PostgresDB) *sql.DB {
	if db == nil {
		return nil
	}
	return db.DB
}
