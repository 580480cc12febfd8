package assistant

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/chartdb/chartdb-gateway/internal/ai"
)

const activeSessionsLimit = 10

// ProviderRegistry resolves provider codes to adapters. Satisfied by
// ai.Registry.
type ProviderRegistry interface {
	Get(code string) (ai.Provider, error)
}

// Service ties session and message persistence to the provider registry.
type Service struct {
	sessions  SessionStore
	messages  MessageStore
	configs   ConfigStore
	diagrams  DiagramContextReader
	providers ProviderRegistry
	retrier   *ai.Retrier
	log       zerolog.Logger
}

func NewService(sessions SessionStore, messages MessageStore, configs ConfigStore, diagrams DiagramContextReader, providers ProviderRegistry, log zerolog.Logger) *Service {
	return &Service{
		sessions:  sessions,
		messages:  messages,
		configs:   configs,
		diagrams:  diagrams,
		providers: providers,
		retrier:   ai.NewRetrier(log),
		log:       log,
	}
}

// StartSession snapshots the diagram and opens a new active session. An
// empty agentConfig selects the default schema-architect agent.
func (s *Service) StartSession(ctx context.Context, userID, diagramID string, agentConfig map[string]interface{}) (*Session, error) {
	snapshot, err := s.diagrams.Snapshot(diagramID, userID)
	if err != nil {
		return nil, err
	}

	if len(agentConfig) == 0 {
		agentConfig = map[string]interface{}{
			"name":         "Schema Architect",
			"model":        "gpt-4",
			"capabilities": []string{"schema-design", "documentation"},
		}
	}

	now := time.Now()
	session := &Session{
		DiagramID:    diagramID,
		UserID:       userID,
		AgentConfig:  agentConfig,
		Context:      snapshot,
		Active:       true,
		StartedAt:    now,
		LastMessageAt: now,
	}
	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}

	s.log.Info().Str("session_id", session.ID).Str("diagram_id", diagramID).Msg("started AI chat session")
	return session, nil
}

// SendMessage runs one non-streaming chat turn.
func (s *Service) SendMessage(ctx context.Context, sessionID, userID, text string) (*ChatMessage, error) {
	return s.SendMessageStreaming(ctx, sessionID, userID, text, nil)
}

// SendMessageStreaming runs one chat turn, forwarding incremental text to
// onChunk when non-nil. Provider failures do not surface as errors: they are
// persisted as a synthetic assistant message so the conversation shows what
// happened.
func (s *Service) SendMessageStreaming(ctx context.Context, sessionID, userID, text string, onChunk func(string)) (*ChatMessage, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !session.Active {
		return nil, ErrSessionInactive
	}

	cfg, err := s.configs.ByUser(userID)
	if err != nil {
		return nil, err
	}
	if cfg.Provider == "" || cfg.APIKey == "" {
		return nil, ErrConfigIncomplete
	}
	model := cfg.Model
	if model == "" {
		model = ai.DefaultModel(cfg.Provider)
	}

	userMessage := &ChatMessage{
		SessionID: sessionID,
		Role:      ai.RoleUser,
		Content:   text,
	}
	if err := s.messages.Save(userMessage); err != nil {
		return nil, err
	}
	session.LastMessageAt = time.Now()
	session.MessageCount++
	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}

	history, err := s.messages.BySession(sessionID)
	if err != nil {
		return nil, err
	}

	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: buildSystemPrompt(session.Context)})
	for _, m := range history {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}

	req := &ai.Request{
		Messages:    messages,
		Model:       model,
		Temperature: ai.Float64(0.7),
		MaxTokens:   ai.Int(2000),
		Tools:       ai.DiagramTools(),
	}

	provider, err := s.providers.Get(cfg.Provider)
	if err != nil {
		return nil, err
	}

	resp, err := s.retrier.Do(ctx, func() (*ai.Response, error) {
		if onChunk != nil {
			return provider.SendStreaming(ctx, req, cfg.APIKey, onChunk)
		}
		return provider.Send(ctx, req, cfg.APIKey)
	})
	if err != nil {
		return s.saveFailure(session, err)
	}

	if resp.FunctionCall != nil {
		return s.saveFunctionCall(session, resp.FunctionCall)
	}

	metadata := map[string]interface{}{}
	for k, v := range resp.Metadata {
		metadata[k] = v
	}
	tokens := resp.TokensUsed
	if tokens == 0 {
		// Streaming responses carry no usage, approximate it.
		tokens = ai.EstimateRequestTokens(req) + ai.EstimateTokens(resp.Content)
		metadata["tokens_estimated"] = true
	}
	metadata["tokens"] = tokens
	metadata["model"] = resp.Model

	assistantMessage := &ChatMessage{
		SessionID: sessionID,
		Role:      ai.RoleAssistant,
		Content:   resp.Content,
		Metadata:  metadata,
	}
	if err := s.messages.Save(assistantMessage); err != nil {
		return nil, err
	}
	session.MessageCount++
	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}

	s.updateUsageStats(userID, cfg, tokens)
	return assistantMessage, nil
}

// saveFunctionCall records the model's proposed diagram edit without
// executing it. The frontend applies the change and confirms.
func (s *Service) saveFunctionCall(session *Session, call *ai.FunctionCall) (*ChatMessage, error) {
	s.log.Info().Str("function", call.Name).Msg("AI requested function call, deferring execution to frontend")

	metadata := map[string]interface{}{
		"functionName": call.Name,
		"arguments":    call.Arguments,
		"pending":      true,
		"result": map[string]interface{}{
			"success":           true,
			"executeOnFrontend": true,
			"message":           "Function call ready for execution",
		},
	}
	msg := &ChatMessage{
		SessionID: session.ID,
		Role:      ai.RoleAssistant,
		Content:   "AI Action: " + call.Name,
		Metadata:  metadata,
	}
	if err := s.messages.Save(msg); err != nil {
		return nil, err
	}
	session.MessageCount++
	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}
	return msg, nil
}

// saveFailure converts a provider failure into a visible assistant message.
func (s *Service) saveFailure(session *Session, cause error) (*ChatMessage, error) {
	s.log.Error().Err(cause).Str("session_id", session.ID).Msg("error getting AI response")

	content := "Sorry, I encountered an error: " + cause.Error()
	if ai.IsRateLimited(cause) {
		content = "I'm receiving too many requests right now. Please wait a moment and try again. " +
			"If this persists, check your API rate limits or consider upgrading your plan."
	}

	msg := &ChatMessage{
		SessionID: session.ID,
		Role:      ai.RoleAssistant,
		Content:   content,
		Metadata: map[string]interface{}{
			"error":        true,
			"errorMessage": cause.Error(),
		},
	}
	if err := s.messages.Save(msg); err != nil {
		return nil, err
	}
	session.MessageCount++
	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Service) updateUsageStats(userID string, cfg *ProviderConfig, tokens int) {
	stats := cfg.UsageStats
	if stats == nil {
		stats = map[string]interface{}{}
	}
	stats["totalTokens"] = intStat(stats, "totalTokens") + tokens
	stats["totalRequests"] = intStat(stats, "totalRequests") + 1
	stats["lastUsed"] = time.Now().Format(time.RFC3339)
	cfg.UsageStats = stats

	if err := s.configs.Save(userID, cfg); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to persist usage stats")
	}
}

func intStat(stats map[string]interface{}, key string) int {
	switch v := stats[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// History returns the session's messages in order.
func (s *Service) History(sessionID, userID string) ([]*ChatMessage, error) {
	if _, err := s.sessions.Get(sessionID, userID); err != nil {
		return nil, err
	}
	return s.messages.BySession(sessionID)
}

// ActiveSessions lists the most recently used active sessions for a diagram.
func (s *Service) ActiveSessions(diagramID string) ([]*Session, error) {
	return s.sessions.ActiveByDiagram(diagramID, activeSessionsLimit)
}

// EndSession marks the session inactive. History is kept.
func (s *Service) EndSession(sessionID, userID string) error {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return err
	}
	session.Active = false
	if err := s.sessions.Save(session); err != nil {
		return err
	}
	s.log.Info().Str("session_id", sessionID).Msg("ended AI chat session")
	return nil
}
