package storage

import (
	"encoding/json"
	"time"
)

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation. A session is the set of
// messages sharing a SessionID; it is not stored on its own.
type ChatMessage struct {
	ID        string          // UUID
	SessionID string          // Opaque client-supplied or generated id
	UserID    string          // Empty for anonymous callers
	Role      string          // RoleUser or RoleAssistant
	Content   string
	Metadata  json.RawMessage // Assistant turns carry {"references": [...]}
	CreatedAt time.Time
}
