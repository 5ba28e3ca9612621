package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/locallibrary/library/pkg/config"
	"github.com/locallibrary/library/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type key int

const ctxKey key = 0

// WithLogging turns on query logging for every query run with ctx.
func WithLogging(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey, true)
}

// LoggingEnabled reports whether ctx was returned by WithLogging.
func LoggingEnabled(ctx context.Context) bool {
	enabled, _ := ctx.Value(ctxKey).(bool)
	return enabled
}

type logQueryHook struct {
	log   logger.Logger
	force bool
}

func (*logQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (qh *logQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if !qh.force && !LoggingEnabled(ctx) {
		return
	}

	qh.log.Debug(event.Query, logger.Data{"duration_ms": time.Since(event.StartTime).Milliseconds()})
}

// New opens the store configured by cfg. The returned handle is the only
// connection to the store and must be closed by the caller.
func New(cfg *config.Config) (*bun.DB, error) {
	var db *bun.DB
	var err error

	switch cfg.DatabaseDriver {
	case config.DatabaseDriverPostgres:
		db, err = openPostgres(cfg)
	default:
		db, err = openSQLite(cfg)
	}
	if err != nil {
		return nil, err
	}

	RegisterModels(db)

	// print out all queries in debug mode, otherwise only for contexts marked
	// with WithLogging
	db.AddQueryHook(&logQueryHook{log: logger.NewWithLevel("debug"), force: cfg.DatabaseDebug})

	// Retry up to a few times to ensure that the database can connect.
	for i := 0; i < cfg.DatabaseConnectRetryCount; i++ {
		_, err = db.Exec("SELECT 1")
		if err != nil {
			time.Sleep(cfg.DatabaseConnectRetryDelay)
			continue
		}
		// We've successfully connected.
		break
	}
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if cfg.DatabaseDriver != config.DatabaseDriverPostgres {
		if err := configureSQLite(db, cfg); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return db, nil
}

// RegisterModels registers the join models bun needs to know about up front.
func RegisterModels(db *bun.DB) {
	db.RegisterModel((*models.BookGenre)(nil))
}

func openSQLite(cfg *config.Config) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseFilePath)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// SQLite only allows a single writer, and an in-memory database only exists
	// for the connection that created it.
	sqldb.SetMaxOpenConns(1)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func openPostgres(cfg *config.Config) (*bun.DB, error) {
	pgxCfg, err := pgx.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid database url")
	}

	sqldb := stdlib.OpenDB(*pgxCfg)

	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func configureSQLite(db *bun.DB, cfg *config.Config) error {
	// WAL mode allows concurrent reads during writes.
	_, err := db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return errors.Wrap(err, "failed to enable WAL mode")
	}

	busyTimeoutMs := cfg.DatabaseBusyTimeout.Milliseconds()
	_, err = db.Exec("PRAGMA busy_timeout=?", busyTimeoutMs)
	if err != nil {
		return errors.Wrap(err, "failed to set busy_timeout")
	}

	return nil
}
