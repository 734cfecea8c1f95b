// Command hrbulkd serves the bulk pipeline over gRPC (hrbulk.v1.BulkService).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/hr-bulk/internal/audit"
	"github.com/joseph-ayodele/hr-bulk/internal/authz"
	"github.com/joseph-ayodele/hr-bulk/internal/batch"
	"github.com/joseph-ayodele/hr-bulk/internal/cleaning"
	"github.com/joseph-ayodele/hr-bulk/internal/common"
	"github.com/joseph-ayodele/hr-bulk/internal/matching"
	"github.com/joseph-ayodele/hr-bulk/internal/pipeline"
	"github.com/joseph-ayodele/hr-bulk/internal/report"
	"github.com/joseph-ayodele/hr-bulk/internal/repository"
	"github.com/joseph-ayodele/hr-bulk/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hrbulkd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Config
	cfg, err := common.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Driver == repository.DriverSQLite && cfg.Database.DSN == "" {
		cfg.Database.DSN = "hrbulk.db"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Logger
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store
	dsn := cfg.Database.DSN
	if cfg.Database.Driver == repository.DriverSQLite && !strings.HasPrefix(dsn, "file:") {
		dsn = repository.SQLiteDSN(dsn)
	}
	store, err := repository.Open(ctx, repository.Config{
		Driver:           cfg.Database.Driver,
		DSN:              dsn,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	if err := store.HealthCheck(ctx, 3*time.Second); err != nil {
		return fmt.Errorf("database health: %w", err)
	}
	logger.Info("database health OK", "driver", cfg.Database.Driver)

	// Pipeline
	repos := repository.NewRepositories(store, logger)
	dicts := matching.DefaultDictionaries()
	if cfg.Pipeline.DictionaryPath != "" {
		if dicts, err = matching.LoadDictionaries(cfg.Pipeline.DictionaryPath); err != nil {
			return fmt.Errorf("load dictionary %s: %w", cfg.Pipeline.DictionaryPath, err)
		}
	}
	az, err := authz.NewAuthorizer(authz.Config{PolicyPath: cfg.Authz.PolicyPath}, repos.Employees, logger)
	if err != nil {
		return err
	}
	var mirrors []audit.Sink
	if cfg.Audit.NATSURL != "" {
		nc, err := audit.ConnectNATS(cfg.Audit.NATSURL, logger)
		if err != nil {
			return err
		}
		defer func() { _ = nc.Drain() }()
		mirrors = append(mirrors, audit.NewNATSSink(nc, cfg.Audit.Subject))
	}
	strategy := matching.ParseStrategy(cfg.Pipeline.MatchStrategy)
	bulk := pipeline.NewBulk(pipeline.Config{
		MaxRows:      cfg.Pipeline.MaxRows,
		Strategy:     strategy,
		Dictionaries: dicts,
	}, pipeline.Deps{
		Authorizer: az,
		Store:      store,
		Mutator:    batch.NewMutator(store, batch.WithBatchSize(cfg.Pipeline.BatchSize), batch.WithLogger(logger)),
		Phone:      cleaning.NewPhoneCleaner(cfg.Pipeline.PhoneRegion),
		Reporter:   report.NewReporter(cfg.Pipeline.ResultsDir, report.ParseFormat(cfg.Pipeline.ReportFormat), logger),
		Auditor:    audit.NewRecorder(audit.NewStoreSink(repos.Audit), logger, mirrors...),
		Logger:     logger,
	})

	// gRPC server
	svc := server.NewBulkService(bulk, server.Config{
		Dictionaries: dicts,
		Strategy:     strategy,
		AdminID:      cfg.Server.AdminID,
	}, logger)
	grpcServer, hs := server.NewGRPCServer(svc, logger)

	lis, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	logger.Info("gRPC serving", "addr", lis.Addr().String())

	serveErr := make(chan error, 1)
	go func() { serveErr <- grpcServer.Serve(lis) }()

	select {
	case err := <-serveErr:
		return fmt.Errorf("grpc serve: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down...")
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	grpcServer.GracefulStop()
	logger.Info("stopped")
	return nil
}

func newLogger(cfg common.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
