package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartdb/chartdb-gateway/internal/ai"
)

type stubDiagrams struct {
	ctx *DiagramContext
}

func (s *stubDiagrams) Snapshot(diagramID, userID string) (*DiagramContext, error) {
	return s.ctx, nil
}

// scriptedProvider returns canned responses (or errors) in order, then
// repeats the last entry.
type scriptedProvider struct {
	responses []*ai.Response
	errs      []error
	calls     int
	lastReq   *ai.Request
}

func (p *scriptedProvider) Code() string              { return "scripted" }
func (p *scriptedProvider) DisplayName() string       { return "Scripted" }
func (p *scriptedProvider) ValidateAPIKey(string) bool { return true }

func (p *scriptedProvider) Send(ctx context.Context, req *ai.Request, apiKey string) (*ai.Response, error) {
	p.lastReq = req
	i := p.calls
	if i >= len(p.responses) {
		i = len(p.responses) - 1
	}
	p.calls++
	return p.responses[i], p.errs[i]
}

func (p *scriptedProvider) SendStreaming(ctx context.Context, req *ai.Request, apiKey string, onChunk func(string)) (*ai.Response, error) {
	resp, err := p.Send(ctx, req, apiKey)
	if err == nil && onChunk != nil {
		onChunk(resp.Content)
	}
	return resp, err
}

type stubRegistry struct {
	provider ai.Provider
}

func (r *stubRegistry) Get(code string) (ai.Provider, error) { return r.provider, nil }

func testContext() *DiagramContext {
	return &DiagramContext{
		DiagramID:    "d1",
		DiagramName:  "Shop",
		DatabaseType: "postgresql",
		Tables: []TableInfo{
			{
				Name: "users",
				Columns: []ColumnInfo{
					{Name: "id", Type: "UUID", PrimaryKey: true},
					{Name: "email", Type: "VARCHAR", Unique: true},
					{Name: "bio", Type: "TEXT", Nullable: true},
				},
				Indexes: []string{"idx_users_email"},
			},
			{Name: "orders", Columns: []ColumnInfo{{Name: "id", Type: "UUID", PrimaryKey: true}}},
		},
		Relationships: []Relationship{
			{From: "orders", To: "users", Type: "MANY_TO_ONE"},
		},
	}
}

func newTestService(p ai.Provider) (*Service, *MemConfigStore) {
	configs := NewMemConfigStore()
	_ = configs.Save("u1", &ProviderConfig{Provider: "scripted", APIKey: "key", Model: "test-model"})
	svc := NewService(
		NewMemSessionStore(),
		NewMemMessageStore(),
		configs,
		&stubDiagrams{ctx: testContext()},
		&stubRegistry{provider: p},
		zerolog.Nop(),
	)
	svc.retrier.BaseDelay = time.Millisecond
	return svc, configs
}

func TestStartSessionDefaultAgent(t *testing.T) {
	svc, _ := newTestService(nil)
	sess, err := svc.StartSession(context.Background(), "u1", "d1", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, sess.ID)
	assert.True(t, sess.Active)
	assert.Equal(t, "Schema Architect", sess.AgentConfig["name"])
	assert.Equal(t, 0, sess.MessageCount)
}

func TestSendMessagePersistsTurnAndUsage(t *testing.T) {
	provider := &scriptedProvider{
		responses: []*ai.Response{{Content: "Looks good.", Model: "test-model", TokensUsed: 42}},
		errs:      []error{nil},
	}
	svc, configs := newTestService(provider)

	sess, err := svc.StartSession(context.Background(), "u1", "d1", nil)
	require.NoError(t, err)

	reply, err := svc.SendMessage(context.Background(), sess.ID, "u1", "review my schema")
	require.NoError(t, err)
	assert.Equal(t, ai.RoleAssistant, reply.Role)
	assert.Equal(t, "Looks good.", reply.Content)
	assert.Equal(t, 42, reply.Metadata["tokens"])

	history, err := svc.History(sess.ID, "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, ai.RoleUser, history[0].Role)
	assert.Equal(t, "review my schema", history[0].Content)

	cfg, err := configs.ByUser("u1")
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.UsageStats["totalTokens"])
	assert.Equal(t, 1, cfg.UsageStats["totalRequests"])
	assert.NotEmpty(t, cfg.UsageStats["lastUsed"])

	// The provider saw the system prompt plus the user turn.
	require.NotNil(t, provider.lastReq)
	assert.Equal(t, ai.RoleSystem, provider.lastReq.Messages[0].Role)
	assert.Len(t, provider.lastReq.Tools, 8)
}

func TestSendMessageFunctionCallIsDeferred(t *testing.T) {
	provider := &scriptedProvider{
		responses: []*ai.Response{{
			FunctionCall: &ai.FunctionCall{
				Name:      "create_table",
				Arguments: map[string]interface{}{"name": "products"},
			},
		}},
		errs: []error{nil},
	}
	svc, _ := newTestService(provider)

	sess, err := svc.StartSession(context.Background(), "u1", "d1", nil)
	require.NoError(t, err)

	reply, err := svc.SendMessage(context.Background(), sess.ID, "u1", "add a products table")
	require.NoError(t, err)

	assert.Equal(t, "AI Action: create_table", reply.Content)
	assert.Equal(t, true, reply.Metadata["pending"])
	assert.Equal(t, "create_table", reply.Metadata["functionName"])
	args := reply.Metadata["arguments"].(map[string]interface{})
	assert.Equal(t, "products", args["name"])
	result := reply.Metadata["result"].(map[string]interface{})
	assert.Equal(t, true, result["executeOnFrontend"])
}

func TestSendMessageRetriesRateLimits(t *testing.T) {
	rateLimited := &ai.ProviderError{Provider: "Scripted", Status: 429, Message: "429 Too Many Requests"}
	provider := &scriptedProvider{
		responses: []*ai.Response{nil, nil, {Content: "third time lucky", TokensUsed: 5}},
		errs:      []error{rateLimited, rateLimited, nil},
	}
	svc, _ := newTestService(provider)

	sess, err := svc.StartSession(context.Background(), "u1", "d1", nil)
	require.NoError(t, err)

	reply, err := svc.SendMessage(context.Background(), sess.ID, "u1", "hi")
	require.NoError(t, err)
	assert.Equal(t, 3, provider.calls)
	assert.Equal(t, "third time lucky", reply.Content)
}

func TestSendMessageFailureBecomesAssistantMessage(t *testing.T) {
	provider := &scriptedProvider{
		responses: []*ai.Response{nil},
		errs:      []error{&ai.ProviderError{Provider: "Scripted", Status: 429, Message: "429 Too Many Requests"}},
	}
	svc, _ := newTestService(provider)

	sess, err := svc.StartSession(context.Background(), "u1", "d1", nil)
	require.NoError(t, err)

	reply, err := svc.SendMessage(context.Background(), sess.ID, "u1", "hi")
	require.NoError(t, err)

	assert.Equal(t, 3, provider.calls) // exhausted all retries first
	assert.Contains(t, reply.Content, "I'm receiving too many requests right now")
	assert.Equal(t, true, reply.Metadata["error"])
	assert.Contains(t, reply.Metadata["errorMessage"], "Too Many Requests")
}

func TestSendMessageGenericFailureText(t *testing.T) {
	provider := &scriptedProvider{
		responses: []*ai.Response{nil},
		errs:      []error{&ai.ProviderError{Provider: "Scripted", Status: 401, Message: "401 Unauthorized"}},
	}
	svc, _ := newTestService(provider)

	sess, err := svc.StartSession(context.Background(), "u1", "d1", nil)
	require.NoError(t, err)

	reply, err := svc.SendMessage(context.Background(), sess.ID, "u1", "hi")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
	assert.Contains(t, reply.Content, "Sorry, I encountered an error:")
}

func TestSendMessageRequiresConfig(t *testing.T) {
	svc, _ := newTestService(nil)
	sess, err := svc.StartSession(context.Background(), "u2", "d1", nil)
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), sess.ID, "u2", "hi")
	assert.ErrorIs(t, err, ErrConfigMissing)
}

func TestEndSessionBlocksFurtherMessages(t *testing.T) {
	svc, _ := newTestService(nil)
	sess, err := svc.StartSession(context.Background(), "u1", "d1", nil)
	require.NoError(t, err)

	require.NoError(t, svc.EndSession(sess.ID, "u1"))

	_, err = svc.SendMessage(context.Background(), sess.ID, "u1", "hi")
	assert.ErrorIs(t, err, ErrSessionInactive)

	active, err := svc.ActiveSessions("d1")
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestHistoryScopedToOwner(t *testing.T) {
	svc, _ := newTestService(nil)
	sess, err := svc.StartSession(context.Background(), "u1", "d1", nil)
	require.NoError(t, err)

	_, err = svc.History(sess.ID, "intruder")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestBuildSystemPromptMarkers(t *testing.T) {
	prompt := buildSystemPrompt(testContext())

	assert.Contains(t, prompt, "- Diagram: Shop")
	assert.Contains(t, prompt, "- Database Type: postgresql")
	assert.Contains(t, prompt, "Table: users")
	assert.Contains(t, prompt, "- id (UUID) [PK] NOT NULL")
	assert.Contains(t, prompt, "- email (VARCHAR) NOT NULL UNIQUE")
	assert.Contains(t, prompt, "- bio (TEXT)")
	assert.NotContains(t, prompt, "bio (TEXT) NOT NULL")
	assert.Contains(t, prompt, "Indexes: idx_users_email")
	assert.Contains(t, prompt, "- orders -> users (MANY_TO_ONE)")
}

func TestBuildSystemPromptEmptyDiagram(t *testing.T) {
	prompt := buildSystemPrompt(&DiagramContext{DiagramName: "Blank", DatabaseType: "mysql"})
	assert.Contains(t, prompt, "[Empty diagram - no tables yet]")
	assert.False(t, strings.Contains(prompt, "CURRENT SCHEMA"))
}
