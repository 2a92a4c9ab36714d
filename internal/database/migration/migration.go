package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name          TEXT        NOT NULL,
  email         TEXT        NOT NULL UNIQUE,
  role          TEXT        NOT NULL DEFAULT 'USER' CHECK (role IN ('USER', 'ADMIN')),
  password_hash BYTEA       NOT NULL,
  salt          BYTEA       NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id               UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  title            TEXT        NOT NULL,
  description      TEXT        NOT NULL,
  authors          JSONB       NOT NULL DEFAULT '[]',
  publication_date TEXT        NOT NULL DEFAULT '',
  document_type    TEXT        NOT NULL,
  research_area    TEXT        NOT NULL,
  keywords         JSONB       NOT NULL DEFAULT '[]',
  file_url         TEXT        NOT NULL UNIQUE,
  file_size        BIGINT      NOT NULL CHECK (file_size >= 0),
  file_mime_type   TEXT        NOT NULL,
  view_count       INTEGER     NOT NULL DEFAULT 0,
  download_count   INTEGER     NOT NULL DEFAULT 0,
  created_by       UUID        NOT NULL REFERENCES users (id),
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at DESC, id ASC);`,
	},
	{
		Name: "create_index_documents_document_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_document_type ON documents (document_type);`,
	},
	{
		Name: "create_index_documents_research_area",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_research_area ON documents (research_area);`,
	},
	{
		Name: "create_index_documents_created_by",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_by ON documents (created_by);`,
	},
}

// EnsureMigrated checks if the 'documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check")

	var exists bool
	query := "SELECT to_regclass('public.documents') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		log.Error("db_migration_failed", zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()))
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.Int64("duration_ms", time.Since(start).Milliseconds()))
		return nil
	}

	log.Info("db_migration_start")

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			log.Error("db_migration_failed", zap.Error(err),
				zap.String("migration_step", step.Name),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()))
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()))
	}

	log.Info("db_migration_success",
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))

	return nil
}
