package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/lameridiana/gestionale/internal/app"
	"github.com/lameridiana/gestionale/internal/audit"
	"github.com/lameridiana/gestionale/internal/auth"
	"github.com/lameridiana/gestionale/internal/clienti"
	"github.com/lameridiana/gestionale/internal/configurazioni"
	"github.com/lameridiana/gestionale/internal/observability"
	"github.com/lameridiana/gestionale/internal/platform/cache"
	"github.com/lameridiana/gestionale/internal/platform/db"
	"github.com/lameridiana/gestionale/internal/session"
	"github.com/lameridiana/gestionale/internal/shared"
	"github.com/lameridiana/gestionale/internal/users"
	"github.com/lameridiana/gestionale/internal/view"
	"github.com/lameridiana/gestionale/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	issuer := session.NewIssuer(cfg.SessionSecret, cfg.SessionTTL)
	revocations := session.NewRevocationList(redisClient)
	settingsCache := cache.New(redisClient, "gestionale", cfg.CacheTTL)

	asynqClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()
	recorder := audit.NewRecorder(asynqClient, logger)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, recorder)
	usersHandler := users.NewHandler(logger, usersService, templates, csrfManager)
	profiles := users.NewProfileSource(usersRepo)

	authService := auth.NewService(usersRepo)
	authHandler := auth.NewHandler(logger, authService, templates, issuer, revocations, csrfManager, cfg.IsProduction())

	clientiRepo := clienti.NewRepository(pool)
	clientiService := clienti.NewService(clientiRepo, recorder)
	clientiHandler := clienti.NewHandler(logger, clientiService, templates, csrfManager)

	settingsRepo := configurazioni.NewRepository(pool)
	settingsService := configurazioni.NewService(settingsRepo, settingsCache, recorder)
	settingsHandler := configurazioni.NewHandler(logger, settingsService, templates, csrfManager)

	auditRepo := audit.NewRepository(pool)
	auditService := audit.NewService(auditRepo)
	auditHandler := audit.NewHandler(logger, auditService, templates, csrfManager)

	metrics := observability.NewMetrics()

	authenticator := session.NewAuthenticator(session.AuthenticatorConfig{
		Secret:          cfg.SessionSecret,
		Profiles:        profiles,
		Revocations:     revocations,
		DevRoleOverride: cfg.DevUserRole,
		Logger:          logger,
	})

	params := app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Templates:       templates,
		CSRFManager:     csrfManager,
		AuthHandler:     authHandler,
		ClientiHandler:  clientiHandler,
		UsersHandler:    usersHandler,
		SettingsHandler: settingsHandler,
		AuditHandler:    auditHandler,
		Metrics:         metrics,
	}
	params.Session = session.Middleware{
		Authenticator: authenticator,
		Logger:        logger,
		Secure:        cfg.IsProduction(),
		Denied:        app.DeniedHandler(params),
		Metrics:       metrics,
	}

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      app.NewRouter(params),
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := group.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
