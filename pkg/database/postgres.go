// Package database opens the PostgreSQL connection and implements the SQL
// record backend on top of it.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const pingTimeout = 5 * time.Second

// DB is an open, pinged PostgreSQL pool.
type DB struct {
	conn *sql.DB
	cfg  Config
}

// New opens the pool described by cfg and checks it is reachable.
func New(ctx context.Context, cfg Config) (*DB, error) {
	conn, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &DB{conn: conn, cfg: cfg}, nil
}

func open(ctx context.Context, cfg Config) (*sql.DB, error) {
	conn, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping %s@%s/%s: %w", cfg.User, cfg.Host, cfg.DBName, err)
	}
	return conn, nil
}

func (db *DB) Close() error { return db.conn.Close() }

// GetConnection exposes the pool to the record backend.
func (db *DB) GetConnection() *sql.DB { return db.conn }
