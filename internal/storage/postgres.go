package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB connects to PostgreSQL using dsn.
func NewDB(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close releases the pool.
func (d *DB) Close() {
	if d != nil && d.Pool != nil {
		d.Pool.Close()
	}
}

// MigratePostgres creates the chat history table. It is idempotent.
func MigratePostgres(ctx context.Context, db *DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS chat_history (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			session_id TEXT NOT NULL,
			user_id TEXT,
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
			content TEXT NOT NULL,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_history_session
			ON chat_history(session_id, created_at, seq)`,
	}
	for _, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate postgres: %w", err)
		}
	}
	return nil
}

// PostgresChatRepo is the PostgreSQL ChatStore.
type PostgresChatRepo struct {
	db *DB
}

// NewPostgresChatRepo creates a new PostgresChatRepo.
func NewPostgresChatRepo(db *DB) *PostgresChatRepo {
	return &PostgresChatRepo{db: db}
}

func (r *PostgresChatRepo) Append(ctx context.Context, msg *ChatMessage) error {
	if err := prepare(msg); err != nil {
		return err
	}

	var metadata any
	if len(msg.Metadata) > 0 {
		metadata = string(msg.Metadata)
	}

	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO chat_history(id, session_id, user_id, role, content, metadata, created_at)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6::jsonb, $7)`,
		msg.ID, msg.SessionID, msg.UserID, msg.Role, msg.Content, metadata, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

func (r *PostgresChatRepo) List(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT id, session_id, COALESCE(user_id, ''), role, content, COALESCE(metadata::text, ''), created_at
FROM chat_history
WHERE session_id = $1
ORDER BY created_at ASC, seq ASC
LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer rows.Close()

	messages := []ChatMessage{}
	for rows.Next() {
		var (
			msg      ChatMessage
			metadata string
		)
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.UserID, &msg.Role, &msg.Content, &metadata, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		if metadata != "" {
			msg.Metadata = []byte(metadata)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat history: %w", err)
	}
	return messages, nil
}

func (r *PostgresChatRepo) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM chat_history WHERE session_id = $1`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chat session: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresChatRepo) Ping(ctx context.Context) error {
	return r.db.Pool.Ping(ctx)
}
