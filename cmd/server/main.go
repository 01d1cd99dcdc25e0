package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cadugr/frotawatch/internal/api/handlers"
	"github.com/cadugr/frotawatch/internal/config"
	"github.com/cadugr/frotawatch/internal/importer"
	"github.com/cadugr/frotawatch/internal/repository"
	"github.com/cadugr/frotawatch/internal/scheduling"
	"github.com/cadugr/frotawatch/internal/service"
	"github.com/cadugr/frotawatch/pkg/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Debug)
	defer logger.Sync()

	logger.Info("Starting FrotaWatch", zap.String("port", cfg.ServerPort))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database migrated successfully")

	fleetRepo := repository.NewFleetRepository(db)
	telemetryRepo := repository.NewTelemetryRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	importLogRepo := repository.NewImportLogRepository(db)
	kvRepo := repository.NewKVRepository(db)

	wsHub := ws.NewHub(logger)
	go wsHub.Run()

	scheduler := scheduling.NewService(logger, scheduleRepo, nil, cfg.SweepInterval)
	scheduler.AddNotifier(wsHub)
	scheduler.Start(ctx)

	importSvc := importer.NewService(logger, fleetRepo, telemetryRepo, importLogRepo)
	importSvc.AddNotifier(wsHub)

	dashboard := service.NewDashboard(logger, fleetRepo, telemetryRepo, scheduleRepo, kvRepo, cfg.DoneDisplayWindow)

	wsHub.SetInitDataProvider(func() interface{} {
		rows, err := dashboard.Rows(ctx)
		if err != nil {
			logger.Error("Failed to build init snapshot", zap.Error(err))
			return nil
		}
		return rows
	})

	handler := handlers.NewHandler(
		logger,
		dashboard,
		scheduler,
		importSvc,
		fleetRepo,
		importLogRepo,
		cfg.ImportLogLimit,
		wsHub,
	)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", server.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func initLogger(debug bool) *zap.Logger {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}

	logger, _ := config.Build()
	return logger
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
