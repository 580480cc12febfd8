package ai

import (
	"fmt"
	"strings"
)

// ProviderError wraps any transport or non-2xx failure from a vendor API.
// The message carries the vendor's literal error text; the retry controller
// inspects it through IsRateLimited.
type ProviderError struct {
	Provider string // display name, e.g. "OpenAI"
	Status   int    // HTTP status, 0 for transport failures
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("Failed to get response from %s: %s", e.Provider, e.Message)
}

func providerErrf(provider string, status int, format string, args ...interface{}) error {
	return &ProviderError{
		Provider: provider,
		Status:   status,
		Message:  fmt.Sprintf(format, args...),
	}
}

// IsRateLimited reports whether err looks like a rate-limit failure. Most
// vendors give no structured error code, so this matches the literal
// exception text; keep the matching here and nowhere else.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "Too Many Requests") ||
		strings.Contains(msg, "rate limit")
}
