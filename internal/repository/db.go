package repository

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver           string
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// DB runs statements against the pool, a pinned session connection or an open transaction.
// Repositories are bound to one DB; rebinding them to a transaction is cheap.
type DB interface {
	dialect.ExecQuerier
	Dialect() string
	// Tx runs fn in a transaction. Inside a transaction, Tx joins it.
	Tx(ctx context.Context, fn func(tx DB) error) error
}

// Store owns the connection pool.
type Store struct {
	drv    *entsql.Driver
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ DB = (*Store)(nil)

// Open connects to the configured driver and returns a Store ready for use.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case DriverSQLite, dialect.SQLite:
		return openSQLite(ctx, cfg, logger)
	case DriverPostgres, "":
		return openPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// openPostgres creates a pgx pool and wraps it for the ent driver.
func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	logger.Info("connecting to database", "driver", DriverPostgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "hr-bulk"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	// Wrap pool as *sql.DB for ent
	db := stdlib.OpenDBFromPool(pool)
	logger.Info("successfully connected to database")
	return &Store{drv: entsql.OpenDB(dialect.Postgres, db), pool: pool, logger: logger}, nil
}

// openSQLite opens a modernc SQLite database. SQLite allows one writer, so the pool is
// capped at a single connection.
func openSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	logger.Info("connecting to database", "driver", DriverSQLite, "dsn", cfg.DSN)
	db, err := stdsql.Open("sqlite", cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if cfg.MaxConnIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	logger.Info("successfully connected to database")
	return &Store{drv: entsql.OpenDB(dialect.SQLite, db), logger: logger}, nil
}

// SQLiteDSN builds a modernc DSN for path with foreign keys on and a busy timeout.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (s *Store) Dialect() string { return s.drv.Dialect() }

func (s *Store) Exec(ctx context.Context, query string, args, v any) error {
	return s.drv.Exec(ctx, query, args, v)
}

func (s *Store) Query(ctx context.Context, query string, args, v any) error {
	return s.drv.Query(ctx, query, args, v)
}

func (s *Store) Tx(ctx context.Context, fn func(tx DB) error) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		s.logger.Error("failed to begin transaction", "error", err)
		return err
	}
	return runTx(&txDB{ExecQuerier: tx, dialect: s.Dialect()}, tx, fn)
}

// Session pins one connection for the lifetime of a pipeline run.
func (s *Store) Session(ctx context.Context) (*Session, error) {
	conn, err := s.drv.DB().Conn(ctx)
	if err != nil {
		s.logger.Error("failed to acquire session connection", "error", err)
		return nil, err
	}
	return &Session{conn: conn, q: entsql.Conn{ExecQuerier: conn}, dialect: s.Dialect(), logger: s.logger}, nil
}

// Close closes the database connections gracefully
func (s *Store) Close() {
	s.logger.Info("closing database connections")
	if err := s.drv.Close(); err != nil {
		s.logger.Error("failed to close database driver", "error", err)
	}
	if s.pool != nil {
		s.pool.Close()
	}
	s.logger.Info("database connections closed")
}

// HealthCheck pings using database/sql to catch DSN issues early.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	s.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := s.drv.DB().PingContext(ctx); err != nil {
		s.logger.Error("database ping failed", "error", err)
		return err
	}
	s.logger.Debug("database ping successful")
	return nil
}

// Session is a single pinned connection. Close must be called on every path.
type Session struct {
	conn    *stdsql.Conn
	q       entsql.Conn
	dialect string
	logger  *slog.Logger
}

var _ DB = (*Session)(nil)

func (s *Session) Dialect() string { return s.dialect }

func (s *Session) Exec(ctx context.Context, query string, args, v any) error {
	return s.q.Exec(ctx, query, args, v)
}

func (s *Session) Query(ctx context.Context, query string, args, v any) error {
	return s.q.Query(ctx, query, args, v)
}

func (s *Session) Tx(ctx context.Context, fn func(tx DB) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", "error", err)
		return err
	}
	return runTx(&txDB{ExecQuerier: entsql.Conn{ExecQuerier: tx}, dialect: s.dialect}, tx, fn)
}

func (s *Session) Close() error {
	return s.conn.Close()
}

type txDB struct {
	dialect.ExecQuerier
	dialect string
}

func (t *txDB) Dialect() string { return t.dialect }

func (t *txDB) Tx(_ context.Context, fn func(tx DB) error) error { return fn(t) }

type committer interface {
	Commit() error
	Rollback() error
}

func runTx(t *txDB, c committer, fn func(tx DB) error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			_ = c.Rollback()
			panic(v)
		}
	}()
	if err := fn(t); err != nil {
		if rerr := c.Rollback(); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return err
	}
	return c.Commit()
}
