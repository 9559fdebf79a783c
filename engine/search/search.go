// Package search orchestrates the property search pipeline: it validates
// the query, extracts structured attributes, embeds the query text, runs
// the vector similarity search, and ranks the joined candidates. Any
// transient provider failure activates the text fallback so the request
// still returns results; the provider path sits behind a circuit breaker
// so repeated failures stop dialing out at all.
package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/HavenAI/haven-mvp/engine/catalog"
	"github.com/HavenAI/haven-mvp/engine/domain"
	"github.com/HavenAI/haven-mvp/engine/semantic"
	"github.com/HavenAI/haven-mvp/pkg/fn"
	"github.com/HavenAI/haven-mvp/pkg/propertynlp"
	"github.com/HavenAI/haven-mvp/pkg/resilience"
)

// Embedder maps query text to a fixed-length vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher abstracts the vector similarity search provider.
type VectorSearcher interface {
	Search(ctx context.Context, embedding []float32, topK int) ([]semantic.Hit, error)
}

// Options configures the search pipeline.
type Options struct {
	// TopK is how many candidates to fetch from the vector search.
	TopK int
	// MaxResults caps the returned result list.
	MaxResults int
	// SearchTimeout bounds the vector search call.
	SearchTimeout time.Duration
	// Breaker configures the provider-path circuit breaker.
	Breaker resilience.BreakerOpts
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		TopK:          50,
		MaxResults:    20,
		SearchTimeout: 5 * time.Second,
		Breaker:       resilience.DefaultBreakerOpts,
	}
}

// Service runs property searches against a read-only catalog.
type Service struct {
	embed   Embedder
	vectors VectorSearcher
	catalog *catalog.Catalog
	breaker *resilience.Breaker
	opts    Options
	logger  *slog.Logger
}

// New creates a search Service. embed may be nil when the provider
// credential is absent; searches then fail fast with a CredentialError.
func New(embed Embedder, vectors VectorSearcher, cat *catalog.Catalog, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		embed:   embed,
		vectors: vectors,
		catalog: cat,
		breaker: resilience.NewBreaker(opts.Breaker),
		opts:    opts,
		logger:  logger,
	}
}

// Response is the structured outcome of one search.
type Response struct {
	Results  []Result `json:"results"`
	Fallback bool     `json:"fallback"`
}

// Search runs the full pipeline for one query.
func (s *Service) Search(ctx context.Context, query string) (*Response, error) {
	if err := domain.ValidateQuery(query); err != nil {
		return nil, err
	}
	if s.embed == nil {
		return nil, &CredentialError{Key: EmbedKeyEnv}
	}

	attrs := propertynlp.Extract(query)
	s.logger.Info("search start",
		"query_len", len(query),
		"has_attrs", !attrs.Empty(),
	)

	hits, err := s.retrieve(ctx, query)
	if err != nil {
		if isAuthErr(err) {
			return nil, &AuthError{Provider: "embedding", Key: EmbedKeyEnv, Err: err}
		}
		s.logger.Warn("vector retrieval failed, using text fallback", "err", err)
		results := FallbackSearch(s.catalog.All(), query, attrs, s.opts.MaxResults)
		return &Response{Results: results, Fallback: true}, nil
	}
	s.logger.Info("vector search done", "hits", len(hits))

	return &Response{Results: Rank(hits, s.catalog, attrs, s.opts.MaxResults)}, nil
}

// retrieve embeds the query and runs the similarity search through the
// circuit breaker; an open breaker fails immediately without dialing out.
func (s *Service) retrieve(ctx context.Context, query string) ([]semantic.Hit, error) {
	res := resilience.CallResult(s.breaker, ctx, func(ctx context.Context) fn.Result[[]semantic.Hit] {
		vec, err := s.embed.EmbedQuery(ctx, query)
		if err != nil {
			return fn.Err[[]semantic.Hit](err)
		}

		sctx, cancel := context.WithTimeout(ctx, s.opts.SearchTimeout)
		defer cancel()
		return fn.FromPair(s.vectors.Search(sctx, vec, s.opts.TopK))
	})
	return res.Unwrap()
}

// isAuthErr string-matches provider authentication failures; these surface
// as a 503 naming the invalid key rather than activating the fallback.
func isAuthErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "authentication") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "api key") ||
		strings.Contains(msg, "401") {
		return true
	}
	return errors.Is(err, ErrProviderAuth)
}
