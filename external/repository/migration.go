package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE session_status AS ENUM ('running', 'completed'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		source_language TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		status session_status NOT NULL DEFAULT 'running',
		stop_reason TEXT NOT NULL DEFAULT '',
		duration_seconds BIGINT NOT NULL DEFAULT 0,
		utterance_count INTEGER NOT NULL DEFAULT 0,
		transcript_text TEXT NOT NULL DEFAULT '',
		webhook_payload JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_running ON sessions (started_at) WHERE status = 'running'`,
	`CREATE TABLE IF NOT EXISTS utterances (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		utterance_index INTEGER NOT NULL,
		source_text TEXT NOT NULL,
		target_language TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		degraded BOOLEAN NOT NULL DEFAULT FALSE,
		translate_ms BIGINT NOT NULL DEFAULT 0,
		synthesize_ms BIGINT NOT NULL DEFAULT 0,
		playback_ms BIGINT NOT NULL DEFAULT 0,
		spoken_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(session_id, utterance_index)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_utterances_session ON utterances (session_id, utterance_index)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
