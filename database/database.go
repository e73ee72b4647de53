package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// execer is the part of pgx.Tx used to write a run.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Database stores run history in Postgres.
type Database struct {
	dsn            string
	ConnectionPool *pgxpool.Pool
}

func NewDatabase(dsn string) *Database {
	return &Database{dsn: dsn}
}

// Connect opens the pool and verifies the server is reachable.
func (db *Database) Connect(ctx context.Context) error {
	cfg, err := pgxpool.ParseConfig(db.dsn)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping: %w", err)
	}

	db.ConnectionPool = pool
	return nil
}

func (db *Database) Close() {
	if db.ConnectionPool != nil {
		db.ConnectionPool.Close()
	}
}

// EnsureSchema creates the run history tables when they are missing.
func (db *Database) EnsureSchema(ctx context.Context) error {
	if db.ConnectionPool == nil {
		return errors.New("database not connected")
	}
	if _, err := db.ConnectionPool.Exec(ctx, createTablesSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// RecordRun writes the run and its observations in one transaction.
func (db *Database) RecordRun(ctx context.Context, rec *RunRecord) (err error) {
	if db.ConnectionPool == nil {
		return errors.New("database not connected")
	}

	tx, err := db.ConnectionPool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer rollbackOrCommit(ctx, tx, &err)

	return writeRun(ctx, tx, rec)
}

func writeRun(ctx context.Context, tx execer, rec *RunRecord) error {
	_, err := tx.Exec(ctx, insertRunQuery,
		rec.RunID,
		rec.Mode,
		rec.Host,
		rec.EnabledOnly,
		rec.StartedAt,
		rec.FinishedAt,
		rec.FlaggedCount,
		rec.count(ChangeNew),
		rec.count(ChangeRemoved),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.RunID, err)
	}

	for _, o := range rec.Observations {
		_, err := tx.Exec(ctx, insertObservationQuery,
			uuid.New(),
			rec.RunID,
			o.UserPrincipalName,
			o.DisplayName,
			o.SAMAccountName,
			o.LastLogon,
			o.Change,
		)
		if err != nil {
			return fmt.Errorf("insert observation %s: %w", o.UserPrincipalName, err)
		}
	}

	return nil
}

func rollbackOrCommit(ctx context.Context, tx pgx.Tx, err *error) {
	if *err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			*err = fmt.Errorf("%w (rollback failed: %v)", *err, rbErr)
		}
		return
	}
	if cmErr := tx.Commit(ctx); cmErr != nil {
		*err = fmt.Errorf("commit failed: %w", cmErr)
	}
}
