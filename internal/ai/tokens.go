package ai

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

// EstimateTokens approximates the token count of text using the cl100k_base
// encoding shared by the GPT-4 family. When the encoding cannot be loaded
// (it is fetched on first use) the len/4 heuristic stands in, which is close
// enough for usage accounting.
func EstimateTokens(text string) int {
	encoderOnce.Do(func() {
		tkm, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoder = tkm
		}
	})
	if encoder == nil {
		return len(text) / 4
	}
	return len(encoder.Encode(text, nil, nil))
}

// EstimateRequestTokens sums the token estimates of every message in req,
// with a small per-message overhead matching the OpenAI chat format.
func EstimateRequestTokens(req *Request) int {
	total := 3 // reply priming
	for _, m := range req.Messages {
		total += 3
		total += EstimateTokens(m.Role)
		total += EstimateTokens(m.Content)
	}
	return total
}
