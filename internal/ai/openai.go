package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const openAIURL = "https://api.openai.com/v1/chat/completions"

type openAIProvider struct {
	client *http.Client
}

func newOpenAIProvider(client *http.Client) *openAIProvider {
	return &openAIProvider{client: client}
}

func (p *openAIProvider) Code() string        { return CodeOpenAI }
func (p *openAIProvider) DisplayName() string { return "OpenAI" }

func (p *openAIProvider) ValidateAPIKey(apiKey string) bool {
	return strings.HasPrefix(apiKey, "sk-") && len(apiKey) > 20
}

func (p *openAIProvider) SendStreaming(ctx context.Context, req *Request, apiKey string, _ func(string)) (*Response, error) {
	return p.Send(ctx, req, apiKey)
}

func (p *openAIProvider) Send(ctx context.Context, req *Request, apiKey string) (*Response, error) {
	body := map[string]interface{}{
		"model":    modelOrDefault(req.Model, "gpt-4"),
		"messages": wireMessages(req.Messages),
	}
	if req.Temperature != nil {
		body["temperature"] = *req.Temperature
	}
	if req.MaxTokens != nil {
		body["max_tokens"] = *req.MaxTokens
	}

	headers := map[string]string{"Authorization": "Bearer " + apiKey}
	data, err := postJSON(ctx, p.client, p.DisplayName(), openAIURL, headers, body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, providerErrf(p.DisplayName(), 0, "decode response: %v", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, providerErrf(p.DisplayName(), 0, "no choices in response")
	}

	return &Response{
		Content:    parsed.Choices[0].Message.Content,
		Model:      parsed.Model,
		TokensUsed: parsed.Usage.TotalTokens,
		Metadata: map[string]interface{}{
			"provider":          CodeOpenAI,
			"prompt_tokens":     parsed.Usage.PromptTokens,
			"completion_tokens": parsed.Usage.CompletionTokens,
		},
	}, nil
}

func modelOrDefault(model, def string) string {
	if model == "" {
		return def
	}
	return model
}

// wireMessages converts messages to the {role,content} array used by every
// OpenAI-compatible vendor.
func wireMessages(messages []Message) []map[string]string {
	out := make([]map[string]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, map[string]string{"role": m.Role, "content": m.Content})
	}
	return out
}
