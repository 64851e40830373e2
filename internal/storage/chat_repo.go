package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_store.go -package=mocks hearsight/internal/storage ChatStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChatStore is the append-only conversation log.
type ChatStore interface {
	// Append stores a message. Missing ID and CreatedAt are filled in.
	Append(ctx context.Context, msg *ChatMessage) error
	// List returns up to limit messages of a session, oldest first.
	List(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error)
	// DeleteSession removes every message of a session and returns how many were removed.
	DeleteSession(ctx context.Context, sessionID string) (int64, error)
	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error
}

// timeLayout keeps lexical order equal to chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ChatRepo is the SQLite ChatStore.
type ChatRepo struct {
	db *sql.DB
}

// NewChatRepo creates a new ChatRepo.
func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

func prepare(msg *ChatMessage) error {
	if msg.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if msg.Role != RoleUser && msg.Role != RoleAssistant {
		return fmt.Errorf("invalid role %q", msg.Role)
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.CreatedAt = msg.CreatedAt.UTC()
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *ChatRepo) Append(ctx context.Context, msg *ChatMessage) error {
	if err := prepare(msg); err != nil {
		return err
	}

	var metadata any
	if len(msg.Metadata) > 0 {
		metadata = string(msg.Metadata)
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO chat_history (id, session_id, user_id, role, content, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		msg.ID, msg.SessionID, nullable(msg.UserID), msg.Role, msg.Content, metadata, msg.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

func (r *ChatRepo) List(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, user_id, role, content, metadata, created_at
		FROM chat_history WHERE session_id = ?
		ORDER BY created_at ASC, seq ASC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	messages := []ChatMessage{}
	for rows.Next() {
		var (
			msg       ChatMessage
			userID    sql.NullString
			metadata  sql.NullString
			createdAt string
		)
		if err := rows.Scan(&msg.ID, &msg.SessionID, &userID, &msg.Role, &msg.Content, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		msg.UserID = userID.String
		if metadata.Valid {
			msg.Metadata = []byte(metadata.String)
		}
		msg.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat history: %w", err)
	}
	return messages, nil
}

func (r *ChatRepo) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM chat_history WHERE session_id = ?", sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chat session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted row count: %w", err)
	}
	return n, nil
}

func (r *ChatRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
