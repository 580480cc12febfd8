// Package ai normalizes five heterogeneous LLM wire protocols into one
// internal request/response contract, with streaming and bounded
// exponential-backoff retry on rate-limit failures.
package ai

// Message roles in conversation order.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation entry. Immutable once sent.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tool defines a function the model may call in agent mode. Parameters is a
// JSON-Schema object.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// Request is the canonical request sent to any provider.
type Request struct {
	Messages    []Message
	Model       string
	Temperature *float64
	MaxTokens   *int
	Tools       []Tool
}

// FunctionCall is a structured action the model emitted instead of text.
type FunctionCall struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Response is the canonical provider response. Either Content or
// FunctionCall is meaningfully set; TokensUsed is 0 when the vendor did not
// report usage (streaming), which callers must treat as "unknown".
type Response struct {
	Content      string
	Model        string
	TokensUsed   int
	FunctionCall *FunctionCall
	Metadata     map[string]interface{}
}

// Float64 returns a pointer to v, for optional request fields.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v, for optional request fields.
func Int(v int) *int { return &v }
