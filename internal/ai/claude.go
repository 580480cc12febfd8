package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const (
	claudeURL        = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

type claudeProvider struct {
	client *http.Client
}

func newClaudeProvider(client *http.Client) *claudeProvider {
	return &claudeProvider{client: client}
}

func (p *claudeProvider) Code() string        { return CodeClaude }
func (p *claudeProvider) DisplayName() string { return "Claude" }

func (p *claudeProvider) ValidateAPIKey(apiKey string) bool {
	return strings.HasPrefix(apiKey, "sk-ant-") && len(apiKey) > 20
}

func (p *claudeProvider) SendStreaming(ctx context.Context, req *Request, apiKey string, _ func(string)) (*Response, error) {
	return p.Send(ctx, req, apiKey)
}

func (p *claudeProvider) Send(ctx context.Context, req *Request, apiKey string) (*Response, error) {
	body := map[string]interface{}{
		"model": modelOrDefault(req.Model, "claude-3-5-sonnet-20241022"),
	}

	// The Anthropic API takes the system prompt as a separate top-level
	// field; the messages array carries user/assistant turns only.
	var messages []map[string]string
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			if _, set := body["system"]; !set {
				body["system"] = m.Content
			}
			continue
		}
		messages = append(messages, map[string]string{"role": m.Role, "content": m.Content})
	}
	body["messages"] = messages

	maxTokens := 4096
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	body["max_tokens"] = maxTokens
	if req.Temperature != nil {
		body["temperature"] = *req.Temperature
	}

	headers := map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": anthropicVersion,
	}
	data, err := postJSON(ctx, p.client, p.DisplayName(), claudeURL, headers, body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Model   string `json:"model"`
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		StopReason string `json:"stop_reason"`
		Usage      struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, providerErrf(p.DisplayName(), 0, "decode response: %v", err)
	}
	if len(parsed.Content) == 0 {
		return nil, providerErrf(p.DisplayName(), 0, "empty content in response")
	}

	return &Response{
		Content:    parsed.Content[0].Text,
		Model:      parsed.Model,
		TokensUsed: parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		Metadata: map[string]interface{}{
			"provider":          CodeClaude,
			"prompt_tokens":     parsed.Usage.InputTokens,
			"completion_tokens": parsed.Usage.OutputTokens,
			"stop_reason":       parsed.StopReason,
		},
	}, nil
}
