package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryKnowsAllProviders(t *testing.T) {
	reg := NewRegistry(nil, RegistryConfig{})
	for _, code := range []string{CodeOpenAI, CodeClaude, CodeGemini, CodeDeepSeek, CodeMistral} {
		p, err := reg.Get(code)
		require.NoError(t, err)
		assert.Equal(t, code, p.Code())
	}

	_, err := reg.Get("grok")
	assert.EqualError(t, err, "Unknown AI provider: grok")
}

func TestValidateAPIKey(t *testing.T) {
	reg := NewRegistry(nil, RegistryConfig{})
	longKey := strings.Repeat("x", 30)

	cases := []struct {
		code  string
		key   string
		valid bool
	}{
		{CodeOpenAI, "sk-" + longKey, true},
		{CodeOpenAI, "sk-short", false},
		{CodeOpenAI, longKey, false},
		{CodeClaude, "sk-ant-" + longKey, true},
		{CodeClaude, "sk-" + longKey, false},
		{CodeGemini, longKey, true},
		{CodeGemini, "short", false},
		{CodeDeepSeek, "sk-" + longKey, true},
		{CodeMistral, strings.Repeat("a", 32), true},
		{CodeMistral, strings.Repeat("a", 31), false},
		{CodeMistral, "   ", false},
	}
	for _, tc := range cases {
		p, err := reg.Get(tc.code)
		require.NoError(t, err)
		assert.Equalf(t, tc.valid, p.ValidateAPIKey(tc.key), "%s / %q", tc.code, tc.key)
	}
}

func TestOpenAISendParsesResponse(t *testing.T) {
	var gotBody map[string]interface{}
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{
			"model": "gpt-4",
			"choices": [{"message": {"content": "hello"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	p := &openAIProvider{client: &http.Client{Transport: rewriteHost(srv)}}
	resp, err := p.Send(context.Background(), &Request{
		Messages:    []Message{{Role: RoleUser, Content: "hi"}},
		Temperature: Float64(0.2),
	}, "sk-test")
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4", gotBody["model"]) // default model
	assert.Equal(t, 0.2, gotBody["temperature"])
	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, 15, resp.TokensUsed)
	assert.Equal(t, 10, resp.Metadata["prompt_tokens"])
}

func TestPostJSONNon2xxCarriesStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "quota exceeded"}`))
	}))
	defer srv.Close()

	_, err := postJSON(context.Background(), srv.Client(), "OpenAI", srv.URL, nil, map[string]interface{}{})
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 429, perr.Status)
	assert.True(t, IsRateLimited(err), "status text must trip the rate-limit check: %v", err)
	assert.Contains(t, err.Error(), "Failed to get response from OpenAI")
}

func TestClaudeSystemPromptLifted(t *testing.T) {
	var gotBody struct {
		System    string              `json:"system"`
		MaxTokens int                 `json:"max_tokens"`
		Messages  []map[string]string `json:"messages"`
	}
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{
			"model": "claude-3-5-sonnet-20241022",
			"content": [{"text": "hi"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 7, "output_tokens": 3}
		}`))
	}))
	defer srv.Close()

	p := &claudeProvider{client: &http.Client{Transport: rewriteHost(srv)}}
	resp, err := p.Send(context.Background(), &Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "be terse"},
			{Role: RoleUser, Content: "hello"},
		},
	}, "sk-ant-key")
	require.NoError(t, err)

	assert.Equal(t, "be terse", gotBody.System)
	assert.Equal(t, 4096, gotBody.MaxTokens)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "user", gotBody.Messages[0]["role"])
	assert.Equal(t, "sk-ant-key", gotHeaders.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", gotHeaders.Get("anthropic-version"))
	assert.Equal(t, 10, resp.TokensUsed)
	assert.Equal(t, "end_turn", resp.Metadata["stop_reason"])
}

func TestGeminiDropsSystemAndMapsRoles(t *testing.T) {
	var gotPath string
	var gotBody struct {
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"parts": [{"text": "answer"}]}}],
			"usageMetadata": {"promptTokenCount": 4, "candidatesTokenCount": 2, "totalTokenCount": 6}
		}`))
	}))
	defer srv.Close()

	p := &geminiProvider{client: &http.Client{Transport: rewriteHost(srv)}}
	resp, err := p.Send(context.Background(), &Request{
		Model: "gemini-pro",
		Messages: []Message{
			{Role: RoleSystem, Content: "ignored"},
			{Role: RoleUser, Content: "q"},
			{Role: RoleAssistant, Content: "a"},
		},
	}, "key")
	require.NoError(t, err)

	assert.Contains(t, gotPath, "gemini-1.5-flash:generateContent")
	require.Len(t, gotBody.Contents, 2)
	assert.Equal(t, "user", gotBody.Contents[0].Role)
	assert.Equal(t, "model", gotBody.Contents[1].Role)
	assert.Equal(t, "answer", resp.Content)
	assert.Equal(t, 6, resp.TokensUsed)
}

func TestGeminiFunctionCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"parts": [
				{"functionCall": {"name": "create_table", "args": {"name": "users"}}}
			]}}]
		}`))
	}))
	defer srv.Close()

	p := &geminiProvider{client: &http.Client{Transport: rewriteHost(srv)}}
	resp, err := p.Send(context.Background(), &Request{
		Messages: []Message{{Role: RoleUser, Content: "make a users table"}},
	}, "key")
	require.NoError(t, err)

	require.NotNil(t, resp.FunctionCall)
	assert.Equal(t, "create_table", resp.FunctionCall.Name)
	assert.Equal(t, "users", resp.FunctionCall.Arguments["name"])
	assert.Empty(t, resp.Content)
}

func TestDeepSeekToolCallArgumentsParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"model": "deepseek-chat",
			"choices": [{"message": {
				"content": "",
				"tool_calls": [{"function": {"name": "add_column", "arguments": "{\"tableName\":\"users\",\"columnName\":\"email\",\"dataType\":\"VARCHAR\"}"}}]
			}}],
			"usage": {"prompt_tokens": 20, "completion_tokens": 10, "total_tokens": 30}
		}`))
	}))
	defer srv.Close()

	p := newDeepSeekProvider(srv.Client(), srv.URL, "")
	resp, err := p.Send(context.Background(), &Request{
		Messages: []Message{{Role: RoleUser, Content: "add email"}},
		Tools:    DiagramTools(),
	}, "sk-deepseek-key-1234567890")
	require.NoError(t, err)

	require.NotNil(t, resp.FunctionCall)
	assert.Equal(t, "add_column", resp.FunctionCall.Name)
	assert.Equal(t, "users", resp.FunctionCall.Arguments["tableName"])
	assert.Equal(t, 30, resp.TokensUsed)
}

func TestDeepSeekStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, true, body["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range []string{"Hel", "lo, ", "world"} {
			payload, _ := json.Marshal(map[string]interface{}{
				"choices": []map[string]interface{}{
					{"delta": map[string]string{"content": chunk}},
				},
			})
			_, _ = w.Write([]byte("data: " + string(payload) + "\n\n"))
		}
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	var chunks []string
	p := newDeepSeekProvider(srv.Client(), srv.URL, "")
	resp, err := p.SendStreaming(context.Background(), &Request{
		Messages: []Message{{Role: RoleUser, Content: "greet"}},
	}, "sk-deepseek-key-1234567890", func(c string) { chunks = append(chunks, c) })
	require.NoError(t, err)

	assert.Equal(t, []string{"Hel", "lo, ", "world"}, chunks)
	assert.Equal(t, "Hello, world", resp.Content)
	assert.Equal(t, 0, resp.TokensUsed)
	assert.Equal(t, true, resp.Metadata["streaming"])
}

func TestDeepSeekFallbackKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer srv.Close()

	p := newDeepSeekProvider(srv.Client(), srv.URL, "sk-fallback")
	_, err := p.Send(context.Background(), &Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-fallback", gotAuth)
}

func TestMistralAlwaysStreams(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(`data: {"choices":[{"delta":{"content":"bonjour"}}]}` + "\n\n"))
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	p := newMistralProvider(srv.Client(), srv.URL)
	resp, err := p.Send(context.Background(), &Request{
		Model:    "mistral-large-latest",
		Messages: []Message{{Role: RoleUser, Content: "salut"}},
	}, strings.Repeat("a", 64))
	require.NoError(t, err)

	assert.Equal(t, true, gotBody["stream"])
	assert.Equal(t, "large-latest", gotBody["model"])
	assert.Equal(t, "bonjour", resp.Content)
	assert.Equal(t, 0, resp.TokensUsed)
}

func TestExtractFunctionCall(t *testing.T) {
	fc := extractFunctionCall(`Sure, here you go: {"function_call": {"name": "delete_table", "arguments": {"tableName": "tmp"}}}`)
	require.NotNil(t, fc)
	assert.Equal(t, "delete_table", fc.Name)
	assert.Equal(t, "tmp", fc.Arguments["tableName"])

	fc = extractFunctionCall(`{"tool_calls": [{"function": {"name": "add_index", "arguments": "{\"tableName\":\"users\",\"indexName\":\"idx_email\",\"columns\":[\"email\"]}"}}]}`)
	require.NotNil(t, fc)
	assert.Equal(t, "add_index", fc.Name)
	assert.Equal(t, "users", fc.Arguments["tableName"])

	assert.Nil(t, extractFunctionCall("plain text, no call"))
	assert.Nil(t, extractFunctionCall(`{"function_call": broken`))
}

func TestDiagramToolsCatalog(t *testing.T) {
	tools := DiagramTools()
	require.Len(t, tools, 8)

	names := make(map[string]Tool, len(tools))
	for _, tool := range tools {
		names[tool.Name] = tool
		assert.NotEmpty(t, tool.Description)
		assert.Equal(t, "object", tool.Parameters["type"])
	}

	create, ok := names["create_table"]
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"name", "columns"}, create.Parameters["required"])

	rel, ok := names["create_relationship"]
	require.True(t, ok)
	props := rel.Parameters["properties"].(map[string]interface{})
	rtype := props["relationshipType"].(map[string]interface{})
	assert.Contains(t, rtype["enum"], "ONE_TO_MANY")
}

func TestScanSSE(t *testing.T) {
	input := strings.NewReader(
		"event: message\n" +
			"data: {\"a\":1}\n\n" +
			": comment\n" +
			"data: \n" +
			"data: {\"b\":2}\n\n" +
			"data: [DONE]\n\n")

	var payloads []string
	err := scanSSE(input, func(p string) { payloads = append(payloads, p) })
	require.NoError(t, err)
	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`}, payloads)
}

// rewriteHost redirects every request to the test server regardless of the
// hard-coded vendor URL.
func rewriteHost(srv *httptest.Server) http.RoundTripper {
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		r.URL.Scheme = "http"
		r.URL.Host = strings.TrimPrefix(srv.URL, "http://")
		return srv.Client().Transport.RoundTrip(r)
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
