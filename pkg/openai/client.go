// Package openai wraps an OpenAI-compatible embeddings API with client-side
// rate limiting and bounded retry on 429 responses.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// Config configures the embedding client.
type Config struct {
	// APIKey authenticates against the provider. Required.
	APIKey string
	// BaseURL overrides the provider endpoint, e.g. for a local
	// OpenAI-compatible service. Empty means the provider default.
	BaseURL string
	// Model is the embedding model name.
	Model string
	// RPS and Burst bound outgoing request rate. Zero RPS disables
	// client-side limiting.
	RPS   float64
	Burst int
}

const (
	maxAttempts    = 3
	initialBackoff = time.Second
	maxBackoff     = 10 * time.Second
)

// EmbedClient generates embeddings through langchaingo's OpenAI client.
type EmbedClient struct {
	embedder embeddings.Embedder
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// New creates an embedding client. It fails when no API key is configured.
func New(cfg Config, logger *slog.Logger) (*EmbedClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrNoKey)
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("openai: create client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("openai: create embedder: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return &EmbedClient{
		embedder: embedder,
		limiter:  limiter,
		logger:   logger.With("component", "openai"),
	}, nil
}

// EmbedQuery embeds a single query string.
func (c *EmbedClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.embedWithRetry(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("openai: empty embedding response")
	}
	return vecs[0], nil
}

// EmbedBatch embeds a batch of documents, preserving order.
func (c *EmbedClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return c.embedWithRetry(ctx, texts)
}

// embedWithRetry runs one embedding request, retrying rate-limited attempts
// with doubling backoff. Auth failures and other errors return immediately.
func (c *EmbedClient) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	backoff := initialBackoff
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		vecs, err := c.embedder.EmbedDocuments(ctx, texts)
		if err == nil {
			return vecs, nil
		}
		lastErr = classify(err)
		if !isRetryable(lastErr) || attempt == maxAttempts {
			break
		}

		c.logger.Warn("embedding rate limited, backing off",
			"attempt", attempt,
			"wait", backoff,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return nil, lastErr
}
