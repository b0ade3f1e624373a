package repository

import (
	"context"
	"time"

	"github.com/foxseedlab/voicebridge/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateSession(ctx context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO sessions (source_language, started_at, status)
		 VALUES ($1, $2, 'running')
		 RETURNING id, source_language, started_at, ended_at, status, created_at, updated_at`,
		input.SourceLanguage, input.StartedAt)
	var s repository.Session
	var endedAt *time.Time
	err := row.Scan(&s.ID, &s.SourceLanguage, &s.StartedAt, &endedAt, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.EndedAt = endedAt
	return &s, nil
}

func (r *PostgresRepository) UpdateSessionCompleted(ctx context.Context, input repository.CompleteSessionInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET status = 'completed', ended_at = $2, updated_at = NOW() WHERE id = $1`,
		input.SessionID, input.EndedAt)
	return err
}

func (r *PostgresRepository) SaveSessionOutput(ctx context.Context, input repository.SaveSessionOutputInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions
		 SET stop_reason = $2, duration_seconds = $3, utterance_count = $4,
		     transcript_text = $5, webhook_payload = $6, updated_at = NOW()
		 WHERE id = $1`,
		input.SessionID, input.StopReason, input.DurationSeconds, input.UtteranceCount,
		input.TranscriptText, input.WebhookPayloadJSON)
	return err
}

func (r *PostgresRepository) InsertUtterance(ctx context.Context, input repository.InsertUtteranceInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO utterances (session_id, utterance_index, source_text, target_language,
		                         translated_text, degraded, translate_ms, synthesize_ms, playback_ms, spoken_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		input.SessionID, input.UtteranceIndex, input.SourceText, input.TargetLanguage,
		input.TranslatedText, input.Degraded, input.TranslateMS, input.SynthesizeMS, input.PlaybackMS, input.SpokenAt)
	return err
}

func (r *PostgresRepository) ListUtterancesBySessionID(ctx context.Context, sessionID string) ([]repository.Utterance, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, utterance_index, source_text, target_language, translated_text,
		        degraded, translate_ms, synthesize_ms, playback_ms, spoken_at, created_at
		 FROM utterances WHERE session_id = $1 ORDER BY utterance_index ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Utterance
	for rows.Next() {
		var u repository.Utterance
		if err := rows.Scan(&u.ID, &u.SessionID, &u.UtteranceIndex, &u.SourceText, &u.TargetLanguage,
			&u.TranslatedText, &u.Degraded, &u.TranslateMS, &u.SynthesizeMS, &u.PlaybackMS, &u.SpokenAt, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
