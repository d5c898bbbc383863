// Package app wires configuration, storage, services, and the HTTP server
// into a runnable application.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gaoexevents/config"
	"gaoexevents/internal/adapters/auth"
	"gaoexevents/internal/adapters/email"
	"gaoexevents/internal/cache"
	delivery "gaoexevents/internal/delivery/http"
	"gaoexevents/internal/delivery/http/controllers"
	"gaoexevents/internal/delivery/http/middleware"
	"gaoexevents/internal/domain"
	"gaoexevents/internal/repository/cached"
	"gaoexevents/internal/repository/localstore"
	"gaoexevents/internal/repository/postgres"
	"gaoexevents/internal/services"
)

const (
	serviceTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
	bcryptCost      = 10
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	db         *sql.DB
	local      *localstore.Store
	redisCache *cache.Cache
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	eventRepo, regRepo, userRepo, err := a.initStore()
	if err != nil {
		return nil, err
	}
	eventRepo = a.maybeWrapEventCache(eventRepo)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(bcryptCost)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.SES.Region,
			AccessKeyID:     cfg.Email.SES.AccessKeyID,
			SecretAccessKey: cfg.Email.SES.SecretAccessKey,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("init mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

	authService := services.NewAuthService(userRepo, hasher, jwtManager, cfg.JWTExpiry)
	eventService := services.NewEventService(eventRepo, userRepo, cfg.Timezone, serviceTimeout)
	registrationService := services.NewRegistrationService(
		eventRepo, regRepo, userRepo, emailService, logger, cfg.Timezone, serviceTimeout)

	router := delivery.NewRouter(
		controllers.NewAuthController(logger, authService),
		controllers.NewEventController(logger, eventService, cfg.Timezone),
		controllers.NewRegistrationController(logger, registrationService),
		jwtManager,
	)

	var handler http.Handler = router
	handler = middleware.Metrics(handler)
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.Recover(logger, handler)

	a.httpServer = &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	return a, nil
}

// initStore opens the persistence backend selected by STORE_DRIVER and
// returns the typed repositories over it.
func (a *App) initStore() (domain.EventRepository, domain.RegistrationRepository, domain.UserRepository, error) {
	switch a.cfg.StoreDriver {
	case config.StorePostgres:
		db, err := postgres.Open(a.cfg.DBUrl)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := postgres.Migrate(db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		a.db = db
		a.logger.Info("store ready", "driver", config.StorePostgres)
		return postgres.NewEventRepository(db),
			postgres.NewRegistrationRepository(db, a.cfg.DBUrl, a.logger),
			postgres.NewUserRepository(db),
			nil
	case config.StoreLocal:
		store, err := localstore.Open(a.cfg.LocalStorePath)
		if err != nil {
			return nil, nil, nil, err
		}
		a.local = store
		a.logger.Info("store ready", "driver", config.StoreLocal, "path", a.cfg.LocalStorePath)
		return localstore.NewEventRepository(store),
			localstore.NewRegistrationRepository(store, a.logger),
			localstore.NewUserRepository(store),
			nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store driver %q", a.cfg.StoreDriver)
	}
}

// maybeWrapEventCache fronts the event catalog with Redis when REDIS_ADDR is
// set. A cache that cannot be reached at startup is skipped with a warning
// rather than failing the boot.
func (a *App) maybeWrapEventCache(eventRepo domain.EventRepository) domain.EventRepository {
	if a.cfg.Redis.Addr == "" {
		return eventRepo
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := cache.New(ctx, a.cfg.Redis)
	if err != nil {
		a.logger.Warn("event cache disabled", "error", err)
		return eventRepo
	}
	a.redisCache = c
	a.logger.Info("event cache ready", "addr", a.cfg.Redis.Addr)
	return cached.NewEventRepository(eventRepo, c, a.logger)
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", "addr", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	if a.redisCache != nil {
		if err := a.redisCache.Close(); err != nil {
			a.logger.Warn("close cache", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("close db: %w", err)
		}
	}
	if a.local != nil {
		if err := a.local.Close(); err != nil {
			return fmt.Errorf("close local store: %w", err)
		}
	}
	a.logger.Info("app stopped")
	return nil
}
