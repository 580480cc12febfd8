package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const defaultMistralBaseURL = "https://mistral-ai.chartdb.in"

type mistralProvider struct {
	client  *http.Client
	baseURL string
}

func newMistralProvider(client *http.Client, baseURL string) *mistralProvider {
	if baseURL == "" {
		baseURL = defaultMistralBaseURL
	}
	return &mistralProvider{client: client, baseURL: baseURL}
}

func (p *mistralProvider) Code() string        { return CodeMistral }
func (p *mistralProvider) DisplayName() string { return "Mistral" }

func (p *mistralProvider) ValidateAPIKey(apiKey string) bool {
	return strings.TrimSpace(apiKey) != "" && len(apiKey) >= 32
}

func (p *mistralProvider) Send(ctx context.Context, req *Request, apiKey string) (*Response, error) {
	return p.SendStreaming(ctx, req, apiKey, nil)
}

// SendStreaming always streams from the Mistral endpoint, even without a
// chunk callback, and accumulates the full text before returning.
func (p *mistralProvider) SendStreaming(ctx context.Context, req *Request, apiKey string, onChunk func(string)) (*Response, error) {
	model := "mistral-small-latest"
	if req.Model != "" {
		model = strings.ReplaceAll(req.Model, "mistral-", "")
	}

	body := map[string]interface{}{
		"model":    model,
		"messages": wireMessages(req.Messages),
		"stream":   true,
	}
	if req.Temperature != nil {
		body["temperature"] = *req.Temperature
	}
	if req.MaxTokens != nil {
		body["max_tokens"] = *req.MaxTokens
	}
	if len(req.Tools) > 0 {
		tools := make([]map[string]interface{}, 0, len(req.Tools))
		for _, t := range req.Tools {
			tools = append(tools, map[string]interface{}{
				"type": "function",
				"function": map[string]interface{}{
					"name":        t.Name,
					"description": t.Description,
					"parameters":  t.Parameters,
				},
			})
		}
		body["tools"] = tools
		body["tool_choice"] = "auto"
	}

	headers := map[string]string{"Authorization": "Bearer " + apiKey}
	if onChunk == nil {
		onChunk = func(string) {}
	}
	content, err := streamOpenAICompat(ctx, p.client, p.DisplayName(), p.baseURL+"/v1/chat/completions", headers, body, onChunk)
	if err != nil {
		return nil, err
	}

	// Mistral can answer a tool prompt with the call serialized into the
	// text stream instead of a structured field.
	var functionCall *FunctionCall
	if strings.Contains(content, `"function_call"`) || strings.Contains(content, `"tool_calls"`) {
		functionCall = extractFunctionCall(content)
	}

	return &Response{
		Content:      content,
		Model:        req.Model,
		TokensUsed:   0, // token counts are not reported on the stream
		FunctionCall: functionCall,
		Metadata: map[string]interface{}{
			"provider":  CodeMistral,
			"model":     req.Model,
			"streaming": true,
		},
	}, nil
}

// extractFunctionCall pulls a function call out of accumulated streamed text.
// It takes the outermost JSON object in the text and accepts either a
// function_call object or an OpenAI-style tool_calls array whose arguments
// are a JSON string.
func extractFunctionCall(content string) *FunctionCall {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}") + 1
	if start < 0 || end <= start {
		return nil
	}

	var outer struct {
		FunctionCall *struct {
			Name      string                 `json:"name"`
			Arguments map[string]interface{} `json:"arguments"`
		} `json:"function_call"`
		ToolCalls []struct {
			Function struct {
				Name      string `json:"name"`
				Arguments string `json:"arguments"`
			} `json:"function"`
		} `json:"tool_calls"`
	}
	if err := json.Unmarshal([]byte(content[start:end]), &outer); err != nil {
		return nil
	}

	if outer.FunctionCall != nil {
		return &FunctionCall{Name: outer.FunctionCall.Name, Arguments: outer.FunctionCall.Arguments}
	}
	if len(outer.ToolCalls) > 0 {
		fn := outer.ToolCalls[0].Function
		var args map[string]interface{}
		if err := json.Unmarshal([]byte(fn.Arguments), &args); err != nil {
			return nil
		}
		return &FunctionCall{Name: fn.Name, Arguments: args}
	}
	return nil
}
