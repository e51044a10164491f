package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ripplesns/ripple/modules/auth"
	"github.com/ripplesns/ripple/modules/timeline"
	"github.com/ripplesns/ripple/pkg/config"
	"github.com/ripplesns/ripple/pkg/email"
	"github.com/ripplesns/ripple/pkg/httpserver"
	"github.com/ripplesns/ripple/pkg/logger"
	"github.com/ripplesns/ripple/pkg/pg"
	"github.com/ripplesns/ripple/pkg/ratelimiter"
	"github.com/ripplesns/ripple/pkg/session"
)

// appConfig holds the top-level settings that do not belong to any single
// package.
type appConfig struct {
	BaseURL       string        `env:"BASE_URL" envDefault:"http://localhost:8080"` // public origin used in emailed links
	StorageDriver string        `env:"STORAGE_DRIVER" envDefault:"postgres"`        // postgres or memory
	TokenTTL      time.Duration `env:"VERIFICATION_TOKEN_TTL" envDefault:"24h"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var logCfg logger.Config
	if err := config.Load(&logCfg); err != nil {
		return fmt.Errorf("load logger config: %w", err)
	}
	log := logger.New(logCfg)

	var appCfg appConfig
	if err := config.Load(&appCfg); err != nil {
		return fmt.Errorf("load app config: %w", err)
	}

	storage, healthchecks, cleanup, err := setupStorage(ctx, appCfg.StorageDriver, log)
	if err != nil {
		return err
	}
	defer cleanup()

	sender, err := setupMailer(log)
	if err != nil {
		return err
	}

	sessions, err := setupSessions(ctx)
	if err != nil {
		return err
	}

	authSvc := auth.NewService(storage, auth.NewEmailGateway(sender, log), appCfg.BaseURL,
		auth.WithLogger(log),
		auth.WithTokenTTL(appCfg.TokenTTL),
	)

	var rlCfg ratelimiter.Config
	if err := config.Load(&rlCfg); err != nil {
		return fmt.Errorf("load ratelimiter config: %w", err)
	}
	rlStore := ratelimiter.NewMemoryStore()
	defer rlStore.Close()
	bucket, err := ratelimiter.NewBucket(rlStore, rlCfg)
	if err != nil {
		return fmt.Errorf("create rate limit bucket: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(sessions.Middleware())

	r.Get("/health", httpserver.HealthCheckHandler(ctx, log, healthchecks...))

	// Register and login issue emails, so they carry the per-IP limiter.
	r.Group(func(r chi.Router) {
		r.Use(ratelimiter.Middleware(bucket, ratelimiter.ByClientIP))
		r.Mount("/auth", auth.NewHandler(authSvc, sessions, log).Router())
	})
	r.Mount("/timeline", timeline.NewHandler(authSvc, log).Router())

	var srvCfg httpserver.Config
	if err := config.Load(&srvCfg); err != nil {
		return fmt.Errorf("load http server config: %w", err)
	}

	log.InfoContext(ctx, "starting server",
		logger.Component("main"), slog.String("addr", srvCfg.Addr), slog.String("storage", appCfg.StorageDriver))

	return httpserver.New(srvCfg, log).Run(ctx, r)
}

// setupStorage picks the user store. The memory driver exists for local runs
// without a database; everything else goes through Postgres with migrations
// applied at startup.
func setupStorage(ctx context.Context, driver string, log *slog.Logger) (auth.Storage, []func(context.Context) error, func(), error) {
	if driver == "memory" {
		log.WarnContext(ctx, "using in-memory storage, data will not survive restarts",
			logger.Component("main"))
		return auth.NewMemoryStorage(), nil, func() {}, nil
	}

	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return nil, nil, nil, fmt.Errorf("load postgres config: %w", err)
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("apply migrations: %w", err)
	}

	return auth.NewPostgresStorage(pool),
		[]func(context.Context) error{pg.Healthcheck(pool)},
		pool.Close, nil
}

func setupMailer(log *slog.Logger) (email.EmailSender, error) {
	var cfg email.Config
	if err := config.Load(&cfg); err != nil {
		return nil, fmt.Errorf("load email config: %w", err)
	}

	if cfg.UseDevSender {
		return email.NewDevSender(log), nil
	}

	sender, err := email.NewPostmarkClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create postmark client: %w", err)
	}
	return sender, nil
}

func setupSessions(ctx context.Context) (*session.Manager, error) {
	var cfg session.Config
	if err := config.Load(&cfg); err != nil {
		return nil, fmt.Errorf("load session config: %w", err)
	}

	if cfg.RedisURL != "" {
		store, err := session.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect session redis: %w", err)
		}
		return session.New(cfg, session.WithStore(store)), nil
	}

	return session.New(cfg), nil
}
