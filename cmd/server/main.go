package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	ledgerapp "github.com/peerrank/backend/internal/application/ledger"
	rankingapp "github.com/peerrank/backend/internal/application/ranking"
	settlementapp "github.com/peerrank/backend/internal/application/settlement"
	stageapp "github.com/peerrank/backend/internal/application/stage"
	"github.com/peerrank/backend/internal/domain/settlement"
	"github.com/peerrank/backend/internal/infrastructure/auth"
	"github.com/peerrank/backend/internal/infrastructure/cache"
	"github.com/peerrank/backend/internal/infrastructure/config"
	"github.com/peerrank/backend/internal/infrastructure/event"
	"github.com/peerrank/backend/internal/infrastructure/logger"
	"github.com/peerrank/backend/internal/infrastructure/persistence"
	"github.com/peerrank/backend/internal/infrastructure/scheduler"
	"github.com/peerrank/backend/internal/infrastructure/telemetry"
	"github.com/peerrank/backend/internal/interfaces/http/handler"
	"github.com/peerrank/backend/internal/interfaces/http/middleware"
	"github.com/peerrank/backend/internal/interfaces/http/router"
)

//	@title			PeerRank Settlement API
//	@version		1.0
//	@description	Peer-ranking settlement backend: proposals, ballots, consensus, reward distribution, and an append-only point ledger.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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

	log.Info("Starting PeerRank backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Balance cache: Redis when reachable, in-process otherwise
	var balanceCache ledgerapp.BalanceCache
	redisCache, err := cache.NewRedisBalanceCache(&cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory balance cache", zap.Error(err))
		balanceCache = cache.NewInMemoryBalanceCache(cache.DefaultBalanceTTL)
	} else {
		balanceCache = redisCache
		defer func() {
			_ = redisCache.Close()
		}()
	}

	bus := event.NewInMemoryEventBus(log)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = bus.Stop(context.Background())
	}()

	// Repositories
	stageRepo := persistence.NewGormStageRepository(db.DB)
	proposalRepo := persistence.NewGormProposalRepository(db.DB)
	ballotRepo := persistence.NewGormBallotRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	settlementRepo := persistence.NewGormSettlementRepository(db.DB)
	directory := persistence.NewGormStageDirectory(db.DB)
	membership := persistence.NewGormMembershipDirectory(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	stageService := stageapp.NewService(stageRepo, log)
	proposalService := rankingapp.NewProposalService(stageRepo, proposalRepo, ballotRepo, membership, log)
	ledgerService := ledgerapp.NewService(ledgerRepo, balanceCache, log)

	scoring := settlement.ScoringConfig{
		StudentWeight:           decimal.NewFromFloat(cfg.Scoring.StudentWeight),
		TeacherWeight:           decimal.NewFromFloat(cfg.Scoring.TeacherWeight),
		CommentRewardPercentile: cfg.Scoring.CommentRewardPercentile,
		MaxCommentSelections:    cfg.Scoring.MaxCommentSelections,
	}
	orchestrator, err := settlementapp.NewOrchestrator(
		txScope, stageRepo, proposalRepo, ballotRepo, ledgerRepo, settlementRepo,
		directory, bus, scoring,
		settlementapp.WithExecutionBudget(cfg.Settlement.ExecutionBudget),
		settlementapp.WithLogger(log),
	)
	if err != nil {
		log.Fatal("Failed to create settlement orchestrator", zap.Error(err))
	}

	// SSE progress fan-out
	sseHandler := handler.NewSettlementProgressSSEHandler(bus,
		handler.WithSSELogger(log),
		handler.WithSSEMaxClients(cfg.Settlement.ProgressMaxClients),
	)
	if err := sseHandler.Start(); err != nil {
		log.Fatal("Failed to start SSE handler", zap.Error(err))
	}
	defer sseHandler.Stop()

	// Stale settlement claim janitor
	if cfg.Settlement.JanitorEnabled {
		janitor := scheduler.NewClaimJanitor(stageService, cfg.Settlement.JanitorSchedule,
			cfg.Settlement.StaleClaimAfter, log)
		if err := janitor.Start(); err != nil {
			log.Fatal("Failed to start claim janitor", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = janitor.Stop(stopCtx)
		}()
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		gin.Recovery(),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodyBytes),
		middleware.CORSWithConfig(corsCfg),
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService: jwtService,
			SkipPaths: []string{
				"/health",
				"/api/v1/health",
				"/api/v1/system/info",
			},
			Logger: log,
		}),
	)

	r := router.NewRouter(engine)
	r.Register(handler.NewSystemHandler(db.DB))
	r.Register(handler.NewStageHandler(stageService))
	r.Register(handler.NewProposalHandler(proposalService))
	r.Register(handler.NewLedgerHandler(ledgerService))
	r.Register(handler.NewSettlementHandler(orchestrator))
	r.Register(sseHandler)
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Server stopped")
}
