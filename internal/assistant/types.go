// Package assistant orchestrates AI chat sessions over diagrams: session
// lifecycle, conversation history, provider dispatch with retry, and the
// streaming relay used by the SSE endpoint.
package assistant

import (
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("Chat session not found")
	ErrSessionInactive = errors.New("Chat session is not active")
	ErrConfigMissing   = errors.New("User AI configuration not found. Please configure your AI provider settings.")
	ErrConfigIncomplete = errors.New("AI provider or API key not configured")
)

// DiagramContext is the schema snapshot captured when a session starts. The
// system prompt is rendered from it, so mid-session diagram edits are not
// visible to the model until a new session begins.
type DiagramContext struct {
	DiagramID    string         `json:"diagramId"`
	DiagramName  string         `json:"diagramName"`
	DatabaseType string         `json:"databaseType"`
	Tables       []TableInfo    `json:"tables"`
	Relationships []Relationship `json:"relationships"`
}

type TableInfo struct {
	Name    string       `json:"name"`
	Columns []ColumnInfo `json:"columns"`
	Indexes []string     `json:"indexes,omitempty"`
}

type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primaryKey"`
	Unique     bool   `json:"unique"`
}

type Relationship struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// Session is one chat conversation bound to a diagram and user.
type Session struct {
	ID            string                 `json:"id"`
	DiagramID     string                 `json:"diagramId"`
	UserID        string                 `json:"-"`
	AgentConfig   map[string]interface{} `json:"agentConfig"`
	Context       *DiagramContext        `json:"-"`
	Active        bool                   `json:"isActive"`
	MessageCount  int                    `json:"messageCount"`
	StartedAt     time.Time              `json:"startedAt"`
	LastMessageAt time.Time              `json:"lastMessageAt"`
}

// ChatMessage is one persisted conversation entry. Metadata carries token
// usage, error markers, or a pending function call.
type ChatMessage struct {
	ID        string                 `json:"id"`
	SessionID string                 `json:"-"`
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// ProviderConfig is a user's AI provider selection. UsageStats accumulates
// totalTokens, totalRequests and lastUsed across turns.
type ProviderConfig struct {
	Provider   string                 `json:"provider"`
	APIKey     string                 `json:"apiKey"`
	Model      string                 `json:"model,omitempty"`
	UsageStats map[string]interface{} `json:"usageStats,omitempty"`
}

// SessionStore persists chat sessions.
type SessionStore interface {
	Save(s *Session) error
	// Get returns the session only when it belongs to userID, otherwise
	// ErrSessionNotFound.
	Get(sessionID, userID string) (*Session, error)
	// ActiveByDiagram lists active sessions for a diagram, most recent
	// message first, at most limit entries.
	ActiveByDiagram(diagramID string, limit int) ([]*Session, error)
}

// MessageStore persists conversation entries.
type MessageStore interface {
	Save(m *ChatMessage) error
	// BySession returns all messages in creation order.
	BySession(sessionID string) ([]*ChatMessage, error)
}

// ConfigStore persists per-user provider configuration.
type ConfigStore interface {
	// ByUser returns ErrConfigMissing when the user never configured a
	// provider.
	ByUser(userID string) (*ProviderConfig, error)
	Save(userID string, cfg *ProviderConfig) error
}

// DiagramContextReader snapshots a diagram's schema for the system prompt.
type DiagramContextReader interface {
	Snapshot(diagramID, userID string) (*DiagramContext, error)
}
