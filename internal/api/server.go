package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhima/audit-store/internal/api/handlers"
	"github.com/dhima/audit-store/internal/api/middleware"
	"github.com/dhima/audit-store/internal/audit"
	"github.com/dhima/audit-store/internal/logging"
	"github.com/dhima/audit-store/internal/metrics"
	"github.com/dhima/audit-store/internal/storage"
	"github.com/dhima/audit-store/pkg/config"
	"github.com/dhima/audit-store/platform/events"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Server orchestrates HTTP routing and dependencies for the API service.
type Server struct {
	config    config.App
	logger    logging.Logger
	router    *gin.Engine
	db        *sqlx.DB
	publisher *events.Publisher

	auditService handlers.AuditService
}

// NewServer wires the API dependencies together from the environment.
func NewServer() *Server {
	cfg := config.FromEnv()

	logger, err := logging.NewLogger(cfg.Environment, cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := storage.Connect(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database",
			zap.String("driver", cfg.DatabaseDriver),
			zap.Error(err))
	}

	var publisher *events.Publisher
	var auditPublisher audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		auditPublisher = publisher
	} else {
		logger.Info("KAFKA_BROKERS not set, asynchronous ingest disabled")
	}

	metrics.Init()

	server := &Server{
		config:       cfg,
		logger:       logger,
		db:           db,
		publisher:    publisher,
		auditService: audit.NewService(storage.NewAuditStore(db, logger), auditPublisher, logger),
	}
	server.setupRouter()
	return server
}

// NewServerWithService builds a server around an existing service; used by tests.
func NewServerWithService(cfg config.App, logger logging.Logger, svc handlers.AuditService) *Server {
	server := &Server{config: cfg, logger: logger, auditService: svc}
	server.setupRouter()
	return server
}

// Handler exposes the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with middleware and routes.
func (s *Server) setupRouter() {
	router := gin.New()
	zapLogger := logging.Zap(s.logger)

	// Recovery first so panics in later middleware are caught.
	router.Use(ginzap.RecoveryWithZap(zapLogger, true))
	router.Use(middleware.RequestID())
	router.Use(ginzap.GinzapWithConfig(zapLogger, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/health", "/metrics"},
		Context: func(c *gin.Context) []zap.Field {
			return []zap.Field{zap.String("request_id", c.GetString(middleware.RequestIDKey))}
		},
	}))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  s.config.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	var pinger handlers.Pinger
	if s.db != nil {
		pinger = s.db
	}
	router.GET("/health", handlers.NewHealthHandler(s.logger, pinger).Health)
	router.GET("/metrics", handlers.NewMetricsHandler(s.logger).Metrics)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		auditHandler := handlers.NewAuditHandler(s.logger, s.auditService)
		audits := v1.Group("/audits")
		{
			audits.POST("", auditHandler.CreateAudit)
			audits.POST("/batch", auditHandler.CreateAuditBatch)
			audits.GET("", auditHandler.ListAudits)
			audits.GET("/count", auditHandler.CountAudits)
			audits.DELETE("", auditHandler.DeleteAudits)
			audits.DELETE("/:id", auditHandler.DeleteAudit)
		}
	}

	s.router = router
}

// Serve starts the HTTP server with graceful shutdown support.
func (s *Server) Serve() error {
	addr := ":" + s.config.APIPort
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		s.logger.Info("starting API server",
			zap.String("address", addr),
			zap.String("environment", s.config.Environment),
			zap.String("database_driver", s.config.DatabaseDriver),
			zap.Bool("async_ingest", s.publisher != nil),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-quit
	s.logger.Info("shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Error("failed to close kafka publisher", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Info("server stopped")
	return logging.SyncQuietly(s.logger)
}
