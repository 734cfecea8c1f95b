package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/joseph-ayodele/hr-bulk/internal/audit"
	"github.com/joseph-ayodele/hr-bulk/internal/authz"
	"github.com/joseph-ayodele/hr-bulk/internal/batch"
	"github.com/joseph-ayodele/hr-bulk/internal/cleaning"
	"github.com/joseph-ayodele/hr-bulk/internal/common"
	"github.com/joseph-ayodele/hr-bulk/internal/matching"
	"github.com/joseph-ayodele/hr-bulk/internal/pipeline"
	"github.com/joseph-ayodele/hr-bulk/internal/report"
	"github.com/joseph-ayodele/hr-bulk/internal/repository"
)

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg    *common.Config
	logger *slog.Logger
	store  *repository.Store
	repos  *repository.Repositories
	nc     *nats.Conn
}

func loadConfig(g *globalFlags) (*common.Config, error) {
	cfg, err := common.LoadConfig(g.envFiles...)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if cfg.Database.Driver == repository.DriverSQLite && cfg.Database.DSN == "" {
		cfg.Database.DSN = "hrbulk.db"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg common.LogConfig, w io.Writer) *slog.Logger {
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
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func storeConfig(cfg common.DatabaseConfig) repository.Config {
	dsn := cfg.DSN
	if cfg.Driver == repository.DriverSQLite && !strings.HasPrefix(dsn, "file:") {
		dsn = repository.SQLiteDSN(dsn)
	}
	return repository.Config{
		Driver:           cfg.Driver,
		DSN:              dsn,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}
}

// openApp loads configuration, builds the logger and opens the store.
func openApp(ctx context.Context, g *globalFlags, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.Log, logOut)
	slog.SetDefault(logger)

	store, err := repository.Open(ctx, storeConfig(cfg.Database), logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		repos:  repository.NewRepositories(store, logger),
	}, nil
}

func (a *app) Close() {
	if a.nc != nil {
		if err := a.nc.Drain(); err != nil {
			a.logger.Warn("nats drain failed", "error", err)
		}
	}
	a.store.Close()
}

func (a *app) dictionaries() (matching.Dictionaries, error) {
	if a.cfg.Pipeline.DictionaryPath == "" {
		return matching.DefaultDictionaries(), nil
	}
	d, err := matching.LoadDictionaries(a.cfg.Pipeline.DictionaryPath)
	if err != nil {
		return nil, fmt.Errorf("load dictionary %s: %w", a.cfg.Pipeline.DictionaryPath, err)
	}
	return d, nil
}

func (a *app) matcher(d matching.Dictionary) *matching.Matcher {
	return matching.NewMatcher(d,
		matching.WithStrategy(matching.ParseStrategy(a.cfg.Pipeline.MatchStrategy)),
		matching.WithLogger(a.logger),
	)
}

// bulk wires the pipeline: authz, mutator, reporter and the audit recorder with an optional
// NATS mirror.
func (a *app) bulk() (*pipeline.Bulk, error) {
	dicts, err := a.dictionaries()
	if err != nil {
		return nil, err
	}
	az, err := authz.NewAuthorizer(authz.Config{PolicyPath: a.cfg.Authz.PolicyPath}, a.repos.Employees, a.logger)
	if err != nil {
		return nil, err
	}

	var mirrors []audit.Sink
	if a.cfg.Audit.NATSURL != "" {
		nc, err := audit.ConnectNATS(a.cfg.Audit.NATSURL, a.logger)
		if err != nil {
			return nil, err
		}
		a.nc = nc
		mirrors = append(mirrors, audit.NewNATSSink(nc, a.cfg.Audit.Subject))
	}

	return pipeline.NewBulk(pipeline.Config{
		MaxRows:      a.cfg.Pipeline.MaxRows,
		Strategy:     matching.ParseStrategy(a.cfg.Pipeline.MatchStrategy),
		Dictionaries: dicts,
	}, pipeline.Deps{
		Authorizer: az,
		Store:      a.store,
		Mutator:    batch.NewMutator(a.store, batch.WithBatchSize(a.cfg.Pipeline.BatchSize), batch.WithLogger(a.logger)),
		Phone:      cleaning.NewPhoneCleaner(a.cfg.Pipeline.PhoneRegion),
		Reporter:   report.NewReporter(a.cfg.Pipeline.ResultsDir, report.ParseFormat(a.cfg.Pipeline.ReportFormat), a.logger),
		Auditor:    audit.NewRecorder(audit.NewStoreSink(a.repos.Audit), a.logger, mirrors...),
		Logger:     a.logger,
	}), nil
}

func (a *app) healthCheck(ctx context.Context) error {
	return a.store.HealthCheck(ctx, 5*time.Second)
}
