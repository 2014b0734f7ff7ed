package database

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"invoiceflow/internal/logger"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// Options tunes the connection pool. Zero values keep the pgx defaults.
type Options struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

func NewPool(ctx context.Context, dsn string, opts Options) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		config.MaxConnLifetime = opts.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log := logger.WithComponent("database")
	log.Info().Str("host", config.ConnConfig.Host).Str("database", config.ConnConfig.Database).Msg("database connected")

	return pool, nil
}

func ClosePool(pool *pgxpool.Pool) {
	if pool == nil {
		return
	}
	pool.Close()
	log := logger.WithComponent("database")
	log.Info().Msg("database disconnected")
}

// Execer runs a statement. *pgxpool.Pool and pgxmock pools satisfy it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Migrate creates any missing tables and indexes. It is safe to run on every start.
func Migrate(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log := logger.WithComponent("database")
	log.Info().Msg("database schema up to date")
	return nil
}

// Schema returns the DDL applied by Migrate.
func Schema() string {
	return schema
}
