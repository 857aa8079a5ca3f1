package app

import (
	"context"
	"fmt"

	"ivr-service/internal/config"
	"ivr-service/internal/db"
	pbxHandler "ivr-service/internal/handlers/pbx"
	"ivr-service/internal/middleware"
	"ivr-service/internal/pkg/session"
	"ivr-service/internal/repository/postgres"
	"ivr-service/internal/service/calllog"
	"ivr-service/internal/service/icount"
	ivrservice "ivr-service/internal/service/ivr"
	menusvc "ivr-service/internal/service/menu"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := postgres.InitSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	// ----- Call sessions -----
	var sessions session.Store
	switch s.cfg.SessionBackend {
	case "memory":
		memStore := session.NewMemoryStore(s.cfg.SessionTTL)
		go memStore.Run(ctx)
		sessions = memStore
	default:
		redisClient, err := db.NewRedisClient(db.RedisConfig{
			Addr:     s.cfg.RedisAddr,
			Password: s.cfg.RedisPass,
			DB:       0,
			PoolSize: 10,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		sessions = session.NewRedisStore(redisClient, s.cfg.SessionTTL)
	}

	// ----- Repositories -----
	customerRepo := postgres.NewCustomerRepository(pool)
	contactRepo := postgres.NewContactRepository(pool)
	callRepo := postgres.NewCallRepository(pool)
	receiptRepo := postgres.NewReceiptRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)
	reportRepo := postgres.NewAnnualReportRepository(pool)

	// ----- Receipt provider -----
	var provider icount.Provider
	if s.cfg.ICount.Mock {
		provider = icount.NewMockProvider(s.cfg.ICount.MockPrefix)
		logger.Info("receipt provider running in mock mode")
	} else {
		provider = icount.NewClient(s.cfg.ICount)
	}

	// ----- Services -----
	callLogger := calllog.NewLogger(customerRepo, callRepo, logger)
	engine := ivrservice.NewEngine(
		customerRepo,
		contactRepo,
		receiptRepo,
		messageRepo,
		reportRepo,
		callLogger,
		sessions,
		provider,
		ivrservice.Config{SubscriptionMonths: s.cfg.SubscriptionMonths},
		logger,
	)
	menuBuilder := menusvc.NewBuilder()

	// ----- Handlers -----
	pbxHandlerInst := pbxHandler.NewPBXHandler(engine, menuBuilder, callLogger, logger)

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
	)

	// ----- Router -----
	SetupRouter(s.engine, &Handlers{PBXHandler: pbxHandlerInst})

	logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}
