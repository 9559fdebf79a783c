// Package index embeds catalog listings and loads them into the vector
// store. Batches flow through a staged pipeline: validate, compose the
// embedding document, embed, upsert with retry, then announce.
package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/HavenAI/haven-mvp/engine/domain"
	"github.com/HavenAI/haven-mvp/engine/semantic"
	"github.com/HavenAI/haven-mvp/pkg/fn"
)

// Subject is the NATS subject announcing freshly indexed listings.
const Subject = "listings.indexed"

// IndexedEvent is published for each listing after its batch is stored.
type IndexedEvent struct {
	ListingID int64     `json:"listingId"`
	Title     string    `json:"title"`
	IndexedAt time.Time `json:"indexedAt"`
}

// Embedder turns documents into vectors, in order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorWriter persists listing vectors.
type VectorWriter interface {
	UpsertListings(ctx context.Context, records []semantic.ListingVector) error
}

// Deps are the pipeline's collaborators. Publish may be nil when no event
// bus is configured.
type Deps struct {
	Embed   Embedder
	Store   VectorWriter
	Publish func(ctx context.Context, ev IndexedEvent)
	Logger  *slog.Logger
}

// Options tunes batching and retry behaviour.
type Options struct {
	// BatchSize is how many listings go into one embedding request.
	BatchSize int
	// Workers bounds how many batches run concurrently.
	Workers int
	// Retry governs the upsert retry policy.
	Retry fn.RetryOpts
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		BatchSize: 64,
		Workers:   2,
		Retry:     fn.DefaultRetry,
	}
}

// Stats summarises one indexing run.
type Stats struct {
	Indexed int
	Skipped int
	Batches int
}

// Run indexes all valid listings. Invalid listings are skipped with a log
// line; any batch failure aborts the run and returns the first error along
// with the stats accumulated so far.
func Run(ctx context.Context, listings []domain.Listing, deps Deps, opts Options) (Stats, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultOptions().BatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultOptions().Workers
	}

	var stats Stats
	valid := fn.Filter(listings, func(l domain.Listing) bool {
		if err := domain.ValidateListing(l); err != nil {
			logger.Warn("skipping invalid listing", "id", l.ID, "err", err)
			return false
		}
		return true
	})
	stats.Skipped = len(listings) - len(valid)
	if len(valid) == 0 {
		return stats, nil
	}

	pipeline := batchPipeline(deps, opts)
	batches := fn.Chunk(valid, opts.BatchSize)
	results := fn.ParMapResult(batches, opts.Workers, func(batch []domain.Listing) fn.Result[[]semantic.ListingVector] {
		return pipeline(ctx, batch)
	})

	for _, r := range results {
		vecs, err := r.Unwrap()
		if err != nil {
			return stats, err
		}
		stats.Indexed += len(vecs)
		stats.Batches++
	}
	logger.Info("indexing complete",
		"indexed", stats.Indexed,
		"skipped", stats.Skipped,
		"batches", stats.Batches,
	)
	return stats, nil
}

// batchPipeline builds the embed → store → announce stage chain for one batch.
func batchPipeline(deps Deps, opts Options) fn.Stage[[]domain.Listing, []semantic.ListingVector] {
	embed := func(ctx context.Context, batch []domain.Listing) fn.Result[[]semantic.ListingVector] {
		texts := fn.Map(batch, ComposeText)
		vecs, err := deps.Embed.EmbedBatch(ctx, texts)
		if err != nil {
			return fn.Err[[]semantic.ListingVector](err)
		}
		if len(vecs) != len(batch) {
			return fn.Errf[[]semantic.ListingVector]("index: got %d embeddings for %d listings", len(vecs), len(batch))
		}
		records := make([]semantic.ListingVector, len(batch))
		for i, l := range batch {
			records[i] = semantic.ListingVector{
				ID:        l.ID,
				Embedding: vecs[i],
				Payload:   listingPayload(l),
			}
		}
		return fn.Ok(records)
	}

	store := fn.RetryStage(opts.Retry, func(ctx context.Context, records []semantic.ListingVector) fn.Result[[]semantic.ListingVector] {
		return fn.FromPair(records, deps.Store.UpsertListings(ctx, records))
	})

	announce := fn.TapStage(func(ctx context.Context, records []semantic.ListingVector) {
		if deps.Publish == nil {
			return
		}
		now := time.Now().UTC()
		for _, r := range records {
			title, _ := r.Payload["title"].(string)
			deps.Publish(ctx, IndexedEvent{ListingID: r.ID, Title: title, IndexedAt: now})
		}
	})

	return fn.TracedStage("index.batch", fn.Then(embed, fn.Then(store, announce)))
}

// listingPayload mirrors the listing fields into the point payload so the
// collection can be inspected without the catalog at hand.
func listingPayload(l domain.Listing) map[string]any {
	p := map[string]any{
		"title":    l.Title,
		"location": l.Location,
		"type":     l.Type,
		"bedrooms": l.Bedrooms,
		"price":    l.Price,
	}
	if l.Coord != nil {
		p["lat"] = l.Coord.Lat
		p["lng"] = l.Coord.Lng
	}
	return p
}
