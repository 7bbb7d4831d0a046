package providers

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tokenEncoder *tiktoken.Tiktoken
	encoderOnce  sync.Once
	encoderErr   error
)

func initTokenEncoder() error {
	encoderOnce.Do(func() {
		// cl100k_base covers the GPT-4 / GPT-3.5-turbo family.
		tokenEncoder, encoderErr = tiktoken.GetEncoding("cl100k_base")
	})
	return encoderErr
}

// countTokens returns an accurate token count via tiktoken, falling back to
// the character heuristic when the encoding is unavailable.
func countTokens(text string) int {
	if err := initTokenEncoder(); err != nil {
		return estimateTokens(text)
	}
	return len(tokenEncoder.Encode(text, nil, nil))
}

// estimateTokens is the rough heuristic: one token per four characters.
func estimateTokens(text string) int {
	return len(text) / 4
}
