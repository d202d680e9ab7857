package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	createSchemaTable = `CREATE TABLE IF NOT EXISTS fieldcare_schema (version INTEGER NOT NULL)`
	selectVersion     = `SELECT COALESCE(MAX(version), 0) FROM fieldcare_schema`
	createPatients    = `CREATE TABLE IF NOT EXISTS patients (
	id TEXT PRIMARY KEY,
	payload BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	deleteVersions = `DELETE FROM fieldcare_schema`
	insertVersion  = `INSERT INTO fieldcare_schema (version) VALUES ($1)`

	selectPayload = `SELECT payload FROM patients WHERE id = $1`
	upsertPayload = `INSERT INTO patients (id, payload, updated_at) VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	deletePayload = `DELETE FROM patients WHERE id = $1`
)

// KV stores opaque payloads in the patients table.
type KV struct {
	conn *sql.DB
}

func NewKV(conn *sql.DB) *KV {
	return &KV{conn: conn}
}

// Open creates the tables for version inside one transaction. A database
// already at a newer version is rejected.
func (kv *KV) Open(ctx context.Context, version int) (err error) {
	tx, err := kv.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, createSchemaTable); err != nil {
		return fmt.Errorf("create schema table: %w", err)
	}

	var current int
	if err = tx.QueryRowContext(ctx, selectVersion).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	switch {
	case current > version:
		return fmt.Errorf("schema version %d is newer than supported %d", current, version)
	case current < version:
		if _, err = tx.ExecContext(ctx, createPatients); err != nil {
			return fmt.Errorf("create patients table: %w", err)
		}
		if _, err = tx.ExecContext(ctx, deleteVersions); err != nil {
			return fmt.Errorf("reset schema version: %w", err)
		}
		if _, err = tx.ExecContext(ctx, insertVersion, version); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (kv *KV) Get(ctx context.Context, id string) ([]byte, error) {
	var payload []byte
	err := kv.conn.QueryRowContext(ctx, selectPayload, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (kv *KV) Put(ctx context.Context, id string, payload []byte) error {
	_, err := kv.conn.ExecContext(ctx, upsertPayload, id, payload)
	return err
}

func (kv *KV) Delete(ctx context.Context, id string) error {
	_, err := kv.conn.ExecContext(ctx, deletePayload, id)
	return err
}
