// controlplaned is the Portarium control plane daemon. It provisions the
// database schema, verifies evidence chain integrity at start, and runs the
// outbox dispatcher loop until terminated.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/45ck/Portarium-sub005/pkg/authz"
	"github.com/45ck/Portarium-sub005/pkg/config"
	"github.com/45ck/Portarium-sub005/pkg/evidence"
	"github.com/45ck/Portarium-sub005/pkg/idempotency"
	"github.com/45ck/Portarium-sub005/pkg/observability"
	"github.com/45ck/Portarium-sub005/pkg/outbox"
	"github.com/45ck/Portarium-sub005/pkg/store"

	_ "github.com/lib/pq"  // Postgres driver
	_ "modernc.org/sqlite" // SQLite driver
)

func main() {
	if err := run(); err != nil {
		slog.Error("controlplaned exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(ctx, &observability.Config{
		ServiceName:  "portarium-control-plane",
		Environment:  envName(),
		OTLPEndpoint: cfg.OTLPEndpoint,
		SampleRate:   1.0,
		Enabled:      cfg.OTLPEndpoint != "",
		Insecure:     true,
	})
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}
	defer func() { _ = obs.Shutdown(context.Background()) }()

	db, err := openDatabase(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	entities := store.NewSQLEntityStore(db)
	outboxStore := outbox.NewSQLStore(db)
	evidenceLog := evidence.NewSQLLog(db, evidence.SHA256Hasher{})
	idemStore := idempotency.NewSQLStore(db)
	for _, init := range []func(context.Context) error{
		entities.Init, outboxStore.Init, evidenceLog.Init, idemStore.Init,
	} {
		if err := init(ctx); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	if err := verifyLedger(ctx, evidenceLog, logger); err != nil {
		return err
	}

	// Fail fast on a malformed policy expression instead of surfacing it on
	// the first authorization check.
	if _, err := authz.NewCELAuthorizer(cfg.Policy); err != nil {
		return fmt.Errorf("compile authorization policy: %w", err)
	}

	dispatcher := outbox.NewDispatcher(outboxStore, logPublisher{logger: logger}, logger,
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMeter(obs.Meter()),
	)

	logger.Info("controlplaned started",
		"database", redactDSN(cfg.DatabaseURL),
		"sweep_interval", cfg.OutboxSweepInterval,
		"batch_size", cfg.OutboxBatchSize,
	)

	if err := dispatcher.Run(ctx, cfg.OutboxSweepInterval); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("controlplaned stopped")
	return nil
}

// verifyLedger recomputes every tenant's evidence chain and refuses to start
// on a broken link. A tampered ledger is not something to run on top of.
func verifyLedger(ctx context.Context, log *evidence.SQLLog, logger *slog.Logger) error {
	tenants, err := log.ListTenants(ctx)
	if err != nil {
		return err
	}
	for _, tenant := range tenants {
		entries, err := log.ListEntries(ctx, tenant)
		if err != nil {
			return err
		}
		if result := evidence.VerifyChain(entries, evidence.SHA256Hasher{}); !result.OK {
			return fmt.Errorf("evidence chain broken for tenant %s at entry %d: %s",
				tenant, result.Index, result.Reason)
		}
	}
	logger.Info("evidence ledger verified", "tenants", len(tenants))
	return nil
}

// openDatabase selects the driver from the DSN scheme: "sqlite:" DSNs use
// the embedded driver, everything else goes to Postgres.
func openDatabase(dsn string) (*sql.DB, error) {
	driver := "postgres"
	if path, ok := strings.CutPrefix(dsn, "sqlite:"); ok {
		driver = "sqlite"
		dsn = path
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func envName() string {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return env
	}
	return "development"
}

func redactDSN(dsn string) string {
	if i := strings.Index(dsn, "@"); i >= 0 {
		if j := strings.Index(dsn, "://"); j >= 0 && j < i {
			return dsn[:j+3] + "***" + dsn[i:]
		}
	}
	return dsn
}
