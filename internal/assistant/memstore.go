package assistant

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory stores backing the dev server and tests. Production deployments
// plug their own persistence behind the same interfaces.

type MemSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemSessionStore() *MemSessionStore {
	return &MemSessionStore{sessions: make(map[string]*Session)}
}

func (s *MemSessionStore) Save(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	copied := *sess
	s.sessions[sess.ID] = &copied
	return nil
}

func (s *MemSessionStore) Get(sessionID, userID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok || sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	copied := *sess
	return &copied, nil
}

func (s *MemSessionStore) ActiveByDiagram(diagramID string, limit int) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Session
	for _, sess := range s.sessions {
		if sess.DiagramID == diagramID && sess.Active {
			copied := *sess
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type MemMessageStore struct {
	mu       sync.RWMutex
	messages map[string][]*ChatMessage // keyed by session ID, in order
}

func NewMemMessageStore() *MemMessageStore {
	return &MemMessageStore{messages: make(map[string][]*ChatMessage)}
}

func (s *MemMessageStore) Save(m *ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	copied := *m
	s.messages[m.SessionID] = append(s.messages[m.SessionID], &copied)
	return nil
}

func (s *MemMessageStore) BySession(sessionID string) ([]*ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.messages[sessionID]
	out := make([]*ChatMessage, len(stored))
	for i, m := range stored {
		copied := *m
		out[i] = &copied
	}
	return out, nil
}

type MemConfigStore struct {
	mu      sync.RWMutex
	configs map[string]*ProviderConfig
}

func NewMemConfigStore() *MemConfigStore {
	return &MemConfigStore{configs: make(map[string]*ProviderConfig)}
}

func (s *MemConfigStore) ByUser(userID string) (*ProviderConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[userID]
	if !ok {
		return nil, ErrConfigMissing
	}
	copied := *cfg
	return &copied, nil
}

func (s *MemConfigStore) Save(userID string, cfg *ProviderConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *cfg
	s.configs[userID] = &copied
	return nil
}
