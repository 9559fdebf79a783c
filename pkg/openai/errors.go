package openai

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoKey means the client was constructed without an API key.
	ErrNoKey = errors.New("missing api key")
	// ErrAuth means the provider rejected the configured key.
	ErrAuth = errors.New("authentication failed")
	// ErrRateLimited means the provider returned 429.
	ErrRateLimited = errors.New("rate limited")
)

// classify maps provider error text onto the package sentinels so callers
// can branch without string matching. Unknown errors pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return fmt.Errorf("openai: %w: %s", ErrRateLimited, err)
	case strings.Contains(msg, "401") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "api key") ||
		strings.Contains(msg, "authentication"):
		return fmt.Errorf("openai: %w: %s", ErrAuth, err)
	default:
		return err
	}
}

func isRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
