package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"league-platform/internal/config"
	"league-platform/internal/database"
	"league-platform/internal/handler"
	"league-platform/internal/metrics"
	"league-platform/internal/middleware"
	"league-platform/internal/repository"
	"league-platform/internal/router"
	"league-platform/internal/service"
	"league-platform/internal/token"
)

const magicLinkCleanupInterval = time.Hour

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	userRepo := repository.NewUserRepository(db.Pool)
	magicLinkRepo := repository.NewMagicLinkRepository(db.Pool)
	grantRepo := repository.NewGrantRepository(db.Pool)
	leagueRepo := repository.NewLeagueRepository(db.Pool)
	clubRepo := repository.NewClubRepository(db.Pool)
	auditRepo := repository.NewAuditRepository(db.Pool)
	if err := db.RegisterMetrics(metrics.Registry); err != nil {
		slog.Warn("database pool metrics unavailable", "error", err)
	}
	slog.Info("database ready")

	keys := token.NewKeyProvider(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.JWTKeyID)
	codec, err := token.NewCodec(token.Options{
		Algorithm: cfg.JWTAlgorithm,
		Secret:    cfg.JWTSecret,
		Keys:      keys,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	if cfg.KeyMaterialMissing() {
		slog.Warn("no key material for the selected JWT algorithm, token issuance will fail", "algorithm", cfg.JWTAlgorithm)
	}

	auditService := service.NewAuditService(auditRepo)
	magicLinkService := service.NewMagicLinkService(userRepo, magicLinkRepo, service.LogMailer{}, codec, auditService, cfg.MagicLinkURL)
	sessionService := service.NewSessionService(userRepo, service.NewContextBuilder(grantRepo), codec, auditService)

	authenticator := middleware.NewAuthenticator(codec)
	appRouter := router.New(cfg, authenticator, router.Handlers{
		Auth:  handler.NewAuthHandler(magicLinkService, sessionService),
		JWKS:  handler.NewJWKSHandler(keys),
		Org:   handler.NewOrgHandler(leagueRepo, clubRepo),
		Audit: handler.NewAuditHandler(auditService),
		Ready: db.Health,
	})

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go magicLinkService.StartCleanupTicker(cleanupCtx, magicLinkCleanupInterval)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			cleanupCancel,
			db.Close,
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
