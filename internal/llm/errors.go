package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrCallFailed wraps every provider failure.
	ErrCallFailed = errors.New("llm call failed")
	ErrNoAPIKey   = errors.New("no Gemini API key provided")
	ErrEmpty      = errors.New("empty response from model")
)

func callError(provider, model string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrCallFailed, provider, model, err)
}
