// Package control wires the resilience and audit components into a runnable
// application with a managed lifecycle.
package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/flowsend/aegis/internal/audit"
	"github.com/flowsend/aegis/internal/core/config"
	redisclient "github.com/flowsend/aegis/internal/infra/redis"
	"github.com/flowsend/aegis/internal/infra/storage"
	"github.com/flowsend/aegis/internal/infra/storage/memory"
	"github.com/flowsend/aegis/internal/infra/storage/postgres"
	"github.com/flowsend/aegis/internal/ops"
	"github.com/flowsend/aegis/internal/resilience"
	"github.com/flowsend/aegis/internal/resilience/breaker"
)

// Config holds the application configuration.
type Config struct {
	Port      int
	Database  postgres.Config
	Redis     redisclient.Config
	Retention config.RetentionConfig
}

// App owns the resilience context and audit pipeline. One instance per
// process; collaborators reach the core through Guard() and Recorder().
type App struct {
	cfg         Config
	guard       *resilience.Guard
	recorder    *audit.Recorder
	sweeper     *audit.Sweeper
	opsServer   *ops.Server
	db          *postgres.DB
	redisClient *redisclient.Client
	log         *slog.Logger
}

// New creates an App with all dependencies initialized.
func New(cfg Config) (*App, error) {
	log := slog.Default()

	// 1. Initialize Storage
	var auditRepo storage.AuditRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		// Run migrations. Goose needs the *sql.DB that sqlx wraps.
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		auditRepo = postgres.NewAuditRepo(db)
		slog.Info("Using PostgreSQL audit store")
	} else {
		auditRepo = memory.NewAuditStore()
		slog.Info("Using in-memory audit store")
	}

	// 2. Initialize Redis (optional, guards the sweep across instances)
	var redisClient *redisclient.Client
	var locker audit.Locker
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, sweep lock disabled", "error", err)
		} else {
			locker = redisClient
		}
	}

	// 3. Resilience context: one breaker per guarded service, process
	// lifetime, explicitly owned here rather than package-level singletons.
	breakers := breaker.NewRegistry()
	guard := resilience.NewGuard(breakers)

	// 4. Audit pipeline
	recorder := audit.NewRecorder(auditRepo, log)

	var sweeper *audit.Sweeper
	if cfg.Retention.Enabled {
		sweeper = audit.NewSweeper(auditRepo, locker, cfg.Retention.SweepInterval, log)
	}

	// 5. Ops server
	probes := map[string]ops.Prober{}
	if db != nil {
		probes["database"] = db
	}
	if redisClient != nil {
		probes["redis"] = redisClient
	}
	opsServer := ops.NewServer(breakers, probes, cfg.Port)

	return &App{
		cfg:         cfg,
		guard:       guard,
		recorder:    recorder,
		sweeper:     sweeper,
		opsServer:   opsServer,
		db:          db,
		redisClient: redisClient,
		log:         log,
	}, nil
}

// Guard returns the resilience call surface for collaborators.
func (a *App) Guard() *resilience.Guard {
	return a.guard
}

// Recorder returns the audit recorder for collaborators.
func (a *App) Recorder() *audit.Recorder {
	return a.recorder
}

// Start starts the background components.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.opsServer.Start(); err != nil {
			a.log.Error("Ops server failed", "error", err)
		}
	}()

	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}

	if a.sweeper != nil {
		a.log.Info("Starting retention sweeper", "interval", a.cfg.Retention.SweepInterval)
		go a.sweeper.Start(ctx)
	}

	return nil
}

// Stop stops the application.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping Aegis...")

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}

	return a.opsServer.Stop(ctx)
}
