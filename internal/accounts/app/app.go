package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/aussiebroadwan/accounts/internal/accounts/http"
	"github.com/aussiebroadwan/accounts/internal/accounts/notify"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/postgres"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application wires the accounts service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	keyManager *jwtx.KeyManager

	// Mail delivery. queue and redis are nil unless the queue transport is used.
	mailer *notify.AsyncSender
	queue  *notify.QueueSender
	worker *notify.Worker
	redis  *redis.Client

	accountService      *service.AccountService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialised.
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "accounts-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)
	if err := cryptox.LoadPepper(); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	keyManager, err := InitKeys(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.keyManager = keyManager

	if err := app.initMail(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the HTTP handler, for serving the API in-process.
func (app *Application) Handler() http.Handler { return app.router }

// Run serves until ctx is cancelled or a component fails, then shuts down.
func (app *Application) Run(ctx context.Context) error {
	app.housekeepingService.Start()

	app.logger.Info("accounts service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database", app.cfg.DatabaseDriver,
		"mail", app.cfg.MailTransport,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	if app.worker != nil {
		g.Go(func() error {
			if err := app.worker.Run(gctx); err != nil {
				return fmt.Errorf("mail worker failed: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
		defer cancel()
		if err := app.server.Shutdown(shutdownCtx); err != nil {
			app.logger.Error("graceful server shutdown failed", "error", err)
			_ = app.server.Close()
		}
		return nil
	})

	err := g.Wait()
	if cerr := app.release(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// release stops background work and closes connections once the server has
// stopped.
func (app *Application) release() error {
	app.housekeepingService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()
	if err := app.mailer.Close(ctx); err != nil {
		app.logger.Error("pending emails were not delivered", "error", err)
	}

	if app.queue != nil {
		if err := app.queue.Close(); err != nil {
			app.logger.Error("error closing mail queue", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("accounts service stopped")
	return nil
}

// initDatabase opens the configured store and applies migrations.
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseDSN)
	default:
		db, err = sqlite.NewStore(app.cfg.DatabaseDSN)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.db = db

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// deliverySender is the transport that finally hands mail over: SMTP when a
// relay is configured, otherwise the log.
func (app *Application) deliverySender() notify.Sender {
	if app.cfg.SMTPHost == "" {
		return notify.LogSender{Logger: app.logger}
	}
	return notify.NewSMTPSender(notify.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUser,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
	})
}

func (app *Application) initMail() error {
	var outbound notify.Sender

	switch app.cfg.MailTransport {
	case MailQueue:
		redisOpts := asynq.RedisClientOpt{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
		}
		app.queue = notify.NewQueueSender(redisOpts)
		app.redis = redis.NewClient(&redis.Options{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
		})
		outbound = app.queue

		if app.cfg.MailWorker {
			worker, err := notify.NewWorker(notify.WorkerConfig{
				RedisOpts:   redisOpts,
				Concurrency: app.cfg.MailWorkerConcurrency,
				Sender:      app.deliverySender(),
				Logger:      app.logger,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize mail worker: %w", err)
			}
			app.worker = worker
		}
	case MailSMTP:
		outbound = app.deliverySender()
	default:
		outbound = notify.LogSender{Logger: app.logger}
	}

	app.mailer = notify.NewAsyncSender(outbound, app.cfg.MailSendTimeout)
	return nil
}

func (app *Application) initServices() {
	app.accountService = service.NewAccountService(app.db, notify.NewMailer(app.mailer), app.keyManager)
	app.accountService.ResetTTL = app.cfg.ResetTTL

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP builds the router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.keyManager.Verifier,
		BuildVersion,
		app.db,
		app.logger,
	)
	router.AccountService = app.accountService
	if app.redis != nil {
		router.ReadinessChecks = map[string]httpapi.ReadinessCheck{
			"queue": func(ctx context.Context) error { return app.redis.Ping(ctx).Err() },
		}
	}
	router.Use(httpx.SecureHeaders(httpx.SecureHeadersOptions{
		Production:   app.cfg.IsProduction(),
		AllowedHosts: app.cfg.AllowedHosts,
	}))
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
