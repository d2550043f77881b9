package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema bootstraps all tables. Runs from both binaries, so the DDL
// is serialized behind an advisory lock.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	original_name TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	size_bytes BIGINT NOT NULL,
	storage_disk TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	title TEXT,
	description TEXT,
	tags JSONB NOT NULL DEFAULT '[]'::jsonb,
	summary TEXT,
	sensitivity TEXT,
	ai_analyzed BOOLEAN NOT NULL DEFAULT FALSE,
	visibility TEXT NOT NULL DEFAULT 'private',
	public_token VARCHAR(64) UNIQUE,
	public_enabled_at TIMESTAMPTZ,
	public_disabled_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_owner_visibility ON documents(owner_id, visibility);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC);

CREATE TABLE IF NOT EXISTS document_shares (
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	shared_by TEXT NOT NULL,
	can_download BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (document_id, user_id)
);

CREATE TABLE IF NOT EXISTS document_search (
	document_id TEXT PRIMARY KEY REFERENCES documents(id) ON DELETE CASCADE,
	title TEXT,
	original_name TEXT,
	description TEXT,
	summary TEXT,
	tags_text TEXT,
	tsv tsvector GENERATED ALWAYS AS (
		to_tsvector('simple',
			coalesce(title, '') || ' ' ||
			coalesce(original_name, '') || ' ' ||
			coalesce(description, '') || ' ' ||
			coalesce(summary, '') || ' ' ||
			coalesce(tags_text, ''))
	) STORED
);

CREATE INDEX IF NOT EXISTS idx_document_search_tsv ON document_search USING GIN (tsv);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
