package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Provider codes.
const (
	CodeOpenAI   = "openai"
	CodeGemini   = "gemini"
	CodeClaude   = "claude"
	CodeMistral  = "mistral"
	CodeDeepSeek = "deepseek"
)

// Provider translates the canonical request/response pair to and from one
// vendor's wire format.
type Provider interface {
	// Code returns the provider code (e.g. "openai").
	Code() string

	// DisplayName returns the human-readable vendor name.
	DisplayName() string

	// Send performs one non-streaming call.
	Send(ctx context.Context, req *Request, apiKey string) (*Response, error)

	// SendStreaming performs one call, invoking onChunk with incremental
	// text before returning the aggregated response. Providers without a
	// streaming wire format fall back to Send.
	SendStreaming(ctx context.Context, req *Request, apiKey string, onChunk func(string)) (*Response, error)

	// ValidateAPIKey checks the key against the vendor's prefix/length
	// heuristic. This is a UX guard, not cryptographic validation.
	ValidateAPIKey(apiKey string) bool
}

// Registry maps provider codes to adapters. It is built eagerly at startup
// and immutable afterwards, so concurrent reads need no synchronization.
type Registry struct {
	providers map[string]Provider
}

// RegistryConfig carries the per-vendor overrides from configuration.
type RegistryConfig struct {
	DeepSeekBaseURL string
	DeepSeekAPIKey  string // fallback key when the user has none configured
	MistralBaseURL  string
}

// NewRegistry builds all five adapters over a shared HTTP client.
func NewRegistry(client *http.Client, cfg RegistryConfig) *Registry {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	providers := []Provider{
		newOpenAIProvider(client),
		newClaudeProvider(client),
		newGeminiProvider(client),
		newDeepSeekProvider(client, cfg.DeepSeekBaseURL, cfg.DeepSeekAPIKey),
		newMistralProvider(client, cfg.MistralBaseURL),
	}
	byCode := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byCode[p.Code()] = p
	}
	return &Registry{providers: byCode}
}

// Get returns the adapter for code.
func (r *Registry) Get(code string) (Provider, error) {
	p, ok := r.providers[code]
	if !ok {
		return nil, fmt.Errorf("Unknown AI provider: %s", code)
	}
	return p, nil
}

// DefaultModel returns the model used when the caller configured none.
func DefaultModel(code string) string {
	switch code {
	case CodeOpenAI:
		return "gpt-4"
	case CodeGemini:
		return "gemini-pro"
	case CodeClaude:
		return "claude-3-5-sonnet-20241022"
	case CodeMistral:
		return "mistral"
	case CodeDeepSeek:
		return "deepseek-chat"
	default:
		return ""
	}
}

// postJSON issues one JSON POST and returns the status and body. Transport
// failures and non-2xx statuses become ProviderErrors carrying the vendor
// message.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, providerErrf(provider, 0, "encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, providerErrf(provider, 0, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, providerErrf(provider, 0, "%v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providerErrf(provider, 0, "read response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, providerErrf(provider, resp.StatusCode, "%d %s: %s", resp.StatusCode, http.StatusText(resp.StatusCode), string(data))
	}
	return data, nil
}

// openStream issues one JSON POST and returns the response body as a stream
// for SSE consumption. The caller must close it.
func openStream(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body interface{}) (io.ReadCloser, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, providerErrf(provider, 0, "encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, providerErrf(provider, 0, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, providerErrf(provider, 0, "%v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, providerErrf(provider, resp.StatusCode, "%d %s: %s", resp.StatusCode, http.StatusText(resp.StatusCode), string(data))
	}
	return resp.Body, nil
}
