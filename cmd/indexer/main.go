// Command indexer loads the listings file, embeds every listing, and
// upserts the vectors into Qdrant. Indexed listings are announced on NATS
// when a server address is given.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/HavenAI/haven-mvp/engine/catalog"
	"github.com/HavenAI/haven-mvp/engine/index"
	"github.com/HavenAI/haven-mvp/engine/semantic"
	"github.com/HavenAI/haven-mvp/pkg/metrics"
	"github.com/HavenAI/haven-mvp/pkg/natsutil"
	"github.com/HavenAI/haven-mvp/pkg/openai"
)

var met = metrics.New()

var (
	mIndexed = met.Counter("haven_indexer_listings_indexed_total", "Listings embedded and stored")
	mSkipped = met.Counter("haven_indexer_listings_skipped_total", "Listings dropped by validation")
	mRunDur  = met.Histogram("haven_indexer_run_duration_seconds", "Full indexing run time", nil)
	mLastRun = met.Gauge("haven_indexer_last_run_timestamp", "Epoch of last completed run")
)

func main() {
	var (
		listingsPath = flag.String("listings", "data/listings.psv", "pipe-delimited listings file")
		openaiBase   = flag.String("openai-base", "", "OpenAI-compatible base URL (empty for api.openai.com)")
		model        = flag.String("model", "text-embedding-3-small", "embedding model")
		qdrantAddr   = flag.String("qdrant", "localhost:6334", "Qdrant gRPC address")
		collection   = flag.String("collection", "listings", "Qdrant collection name")
		dims         = flag.Int("dims", 1536, "embedding vector dimensions")
		natsURL      = flag.String("nats", "", "NATS server URL for indexed-listing events (empty disables)")
		batchSize    = flag.Int("batch", 64, "listings per embedding request")
		workers      = flag.Int("workers", 2, "concurrent embedding batches")
		recreate     = flag.Bool("recreate", false, "drop and recreate the collection before indexing")
	)
	flag.Parse()

	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	met.CollectRuntime("haven_indexer", 15*time.Second)
	met.ServeAsync(9091)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}

	cat, err := catalog.Load(*listingsPath)
	if err != nil {
		log.Error("catalog load failed", "error", err)
		os.Exit(1)
	}
	log.Info("catalog loaded", "listings", cat.Len())

	vs, err := semantic.New(*qdrantAddr, *collection)
	if err != nil {
		log.Error("qdrant connect failed", "error", err)
		os.Exit(1)
	}
	defer vs.Close()

	if *recreate {
		if err := vs.DeleteCollection(ctx); err != nil {
			log.Warn("collection delete failed (may not exist)", "error", err)
		}
	}
	if err := vs.EnsureCollection(ctx, *dims); err != nil {
		log.Error("qdrant ensure collection failed", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Qdrant", "collection", *collection, "dims", *dims)

	embedder, err := openai.New(openai.Config{
		APIKey:  apiKey,
		BaseURL: *openaiBase,
		Model:   *model,
		RPS:     5,
		Burst:   2,
	}, log)
	if err != nil {
		log.Error("openai client failed", "error", err)
		os.Exit(1)
	}

	deps := index.Deps{
		Embed:  embedder,
		Store:  vs,
		Logger: log,
	}

	if *natsURL != "" {
		nc, err := nats.Connect(*natsURL)
		if err != nil {
			log.Error("nats connect failed", "error", err)
			os.Exit(1)
		}
		defer nc.Drain()
		log.Info("publishing indexed-listing events", "subject", index.Subject)
		deps.Publish = func(ctx context.Context, ev index.IndexedEvent) {
			if err := natsutil.Publish(ctx, nc, index.Subject, ev); err != nil {
				log.Warn("event publish failed", "listing", ev.ListingID, "error", err)
			}
		}
	}

	opts := index.DefaultOptions()
	opts.BatchSize = *batchSize
	opts.Workers = *workers

	start := time.Now()
	stats, err := index.Run(ctx, cat.All(), deps, opts)
	mRunDur.Since(start)
	mIndexed.Add(int64(stats.Indexed))
	mSkipped.Add(int64(stats.Skipped))
	mLastRun.Set(time.Now().Unix())
	if err != nil {
		log.Error("indexing failed", "indexed", stats.Indexed, "error", err)
		os.Exit(1)
	}
	log.Info("indexing finished",
		"indexed", stats.Indexed,
		"skipped", stats.Skipped,
		"batches", stats.Batches,
		"took", time.Since(start),
	)
}
