package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/"

type geminiProvider struct {
	client *http.Client
}

func newGeminiProvider(client *http.Client) *geminiProvider {
	return &geminiProvider{client: client}
}

func (p *geminiProvider) Code() string        { return CodeGemini }
func (p *geminiProvider) DisplayName() string { return "Gemini" }

func (p *geminiProvider) ValidateAPIKey(apiKey string) bool {
	return len(apiKey) > 20
}

func (p *geminiProvider) SendStreaming(ctx context.Context, req *Request, apiKey string, _ func(string)) (*Response, error) {
	return p.Send(ctx, req, apiKey)
}

func (p *geminiProvider) Send(ctx context.Context, req *Request, apiKey string) (*Response, error) {
	model := modelOrDefault(req.Model, "gemini-1.5-flash")
	apiModel := mapGeminiModel(model)

	body := map[string]interface{}{}

	// Gemini has no system role; system messages are dropped from the wire
	// payload and the remaining roles map to its user/model vocabulary.
	var contents []map[string]interface{}
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			continue
		}
		role := "model"
		if m.Role == RoleUser {
			role = "user"
		}
		contents = append(contents, map[string]interface{}{
			"role":  role,
			"parts": []map[string]interface{}{{"text": m.Content}},
		})
	}
	body["contents"] = contents

	if len(req.Tools) > 0 {
		declarations := make([]map[string]interface{}, 0, len(req.Tools))
		for _, t := range req.Tools {
			declarations = append(declarations, map[string]interface{}{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
			})
		}
		body["tools"] = []map[string]interface{}{{"functionDeclarations": declarations}}
	}

	if req.Temperature != nil || req.MaxTokens != nil {
		generationConfig := map[string]interface{}{}
		if req.Temperature != nil {
			generationConfig["temperature"] = *req.Temperature
		}
		if req.MaxTokens != nil {
			generationConfig["maxOutputTokens"] = *req.MaxTokens
		}
		body["generationConfig"] = generationConfig
	}

	headers := map[string]string{"x-goog-api-key": apiKey}
	data, err := postJSON(ctx, p.client, p.DisplayName(), geminiBaseURL+apiModel+":generateContent", headers, body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text         string `json:"text"`
					FunctionCall *struct {
						Name string                 `json:"name"`
						Args map[string]interface{} `json:"args"`
					} `json:"functionCall"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		UsageMetadata *struct {
			PromptTokenCount     int `json:"promptTokenCount"`
			CandidatesTokenCount int `json:"candidatesTokenCount"`
			TotalTokenCount      int `json:"totalTokenCount"`
		} `json:"usageMetadata"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, providerErrf(p.DisplayName(), 0, "decode response: %v", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, providerErrf(p.DisplayName(), 0, "no candidates in response")
	}

	metadata := map[string]interface{}{"provider": CodeGemini}
	part := parsed.Candidates[0].Content.Parts[0]

	totalTokens := 0
	if parsed.UsageMetadata != nil {
		totalTokens = parsed.UsageMetadata.TotalTokenCount
	}

	if part.FunctionCall != nil {
		args := part.FunctionCall.Args
		if args == nil {
			args = map[string]interface{}{}
		}
		return &Response{
			Model:        model,
			TokensUsed:   totalTokens,
			FunctionCall: &FunctionCall{Name: part.FunctionCall.Name, Arguments: args},
			Metadata:     metadata,
		}, nil
	}

	if parsed.UsageMetadata != nil {
		metadata["prompt_tokens"] = parsed.UsageMetadata.PromptTokenCount
		metadata["completion_tokens"] = parsed.UsageMetadata.CandidatesTokenCount
	}

	return &Response{
		Content:    part.Text,
		Model:      model,
		TokensUsed: totalTokens,
		Metadata:   metadata,
	}, nil
}

// mapGeminiModel maps common model names to actual Gemini API model names.
// Legacy gemini-pro is redirected to gemini-1.5-flash; "-latest" suffixes
// are stripped because the API does not use them.
func mapGeminiModel(model string) string {
	switch strings.ToLower(model) {
	case "gemini-1.5-pro", "gemini-1.5-pro-latest":
		return "gemini-1.5-pro"
	case "gemini-1.5-flash", "gemini-1.5-flash-latest":
		return "gemini-1.5-flash"
	case "gemini-1.5-flash-8b":
		return "gemini-1.5-flash-8b"
	case "gemini-3-flash-preview":
		return "gemini-3-flash-preview"
	case "gemini-3-pro-preview":
		return "gemini-3-pro-preview"
	case "gemini-pro", "gemini-pro-vision":
		return "gemini-1.5-flash"
	default:
		return model
	}
}
