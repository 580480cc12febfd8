package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const defaultDeepSeekBaseURL = "https://api.deepseek.com"

type deepSeekProvider struct {
	client        *http.Client
	baseURL       string
	defaultAPIKey string
}

func newDeepSeekProvider(client *http.Client, baseURL, defaultAPIKey string) *deepSeekProvider {
	if baseURL == "" {
		baseURL = defaultDeepSeekBaseURL
	}
	return &deepSeekProvider{client: client, baseURL: baseURL, defaultAPIKey: defaultAPIKey}
}

func (p *deepSeekProvider) Code() string        { return CodeDeepSeek }
func (p *deepSeekProvider) DisplayName() string { return "DeepSeek" }

func (p *deepSeekProvider) ValidateAPIKey(apiKey string) bool {
	return strings.HasPrefix(apiKey, "sk-") && len(apiKey) > 20
}

func (p *deepSeekProvider) Send(ctx context.Context, req *Request, apiKey string) (*Response, error) {
	return p.send(ctx, req, apiKey, nil)
}

func (p *deepSeekProvider) SendStreaming(ctx context.Context, req *Request, apiKey string, onChunk func(string)) (*Response, error) {
	return p.send(ctx, req, apiKey, onChunk)
}

func (p *deepSeekProvider) send(ctx context.Context, req *Request, apiKey string, onChunk func(string)) (*Response, error) {
	if apiKey == "" {
		apiKey = p.defaultAPIKey
	}

	body := openAICompatBody(req, "deepseek-chat", onChunk != nil)
	headers := map[string]string{"Authorization": "Bearer " + apiKey}
	url := p.baseURL + "/v1/chat/completions"

	if onChunk != nil {
		content, err := streamOpenAICompat(ctx, p.client, p.DisplayName(), url, headers, body, onChunk)
		if err != nil {
			return nil, err
		}
		return &Response{
			Content:    content,
			Model:      req.Model,
			TokensUsed: 0, // usage is not reported during streaming
			Metadata: map[string]interface{}{
				"provider":  CodeDeepSeek,
				"model":     req.Model,
				"streaming": true,
			},
		}, nil
	}

	data, err := postJSON(ctx, p.client, p.DisplayName(), url, headers, body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content   string `json:"content"`
				ToolCalls []struct {
					Function struct {
						Name      string `json:"name"`
						Arguments string `json:"arguments"`
					} `json:"function"`
				} `json:"tool_calls"`
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

	message := parsed.Choices[0].Message

	// Tool-call arguments arrive as a JSON string and must be parsed into a
	// map, not left as raw text.
	var functionCall *FunctionCall
	if len(message.ToolCalls) > 0 {
		fn := message.ToolCalls[0].Function
		var args map[string]interface{}
		if err := json.Unmarshal([]byte(fn.Arguments), &args); err == nil {
			functionCall = &FunctionCall{Name: fn.Name, Arguments: args}
		}
	}

	return &Response{
		Content:      message.Content,
		Model:        parsed.Model,
		TokensUsed:   parsed.Usage.TotalTokens,
		FunctionCall: functionCall,
		Metadata: map[string]interface{}{
			"provider":          CodeDeepSeek,
			"prompt_tokens":     parsed.Usage.PromptTokens,
			"completion_tokens": parsed.Usage.CompletionTokens,
		},
	}, nil
}

// openAICompatBody builds the request body shared by the OpenAI-compatible
// vendors (messages[], tools[] of {type:"function"}, tool_choice:"auto").
func openAICompatBody(req *Request, defaultModel string, stream bool) map[string]interface{} {
	body := map[string]interface{}{
		"model":    modelOrDefault(req.Model, defaultModel),
		"messages": wireMessages(req.Messages),
		"stream":   stream,
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
	return body
}

// streamOpenAICompat consumes an OpenAI-compatible SSE stream, forwarding
// each choices[0].delta.content fragment to onChunk and returning the
// accumulated text.
func streamOpenAICompat(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body interface{}, onChunk func(string)) (string, error) {
	stream, err := openStream(ctx, client, provider, url, headers, body)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var full strings.Builder
	scanErr := scanSSE(stream, func(payload string) {
		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return // malformed chunk, skip
		}
		if len(chunk.Choices) == 0 {
			return
		}
		content := chunk.Choices[0].Delta.Content
		if content != "" {
			full.WriteString(content)
			onChunk(content)
		}
	})
	if scanErr != nil {
		return "", providerErrf(provider, 0, "read stream: %v", scanErr)
	}
	return full.String(), nil
}
