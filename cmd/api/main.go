// Package main implements the Haven property search API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/HavenAI/haven-mvp/engine/catalog"
	"github.com/HavenAI/haven-mvp/engine/index"
	"github.com/HavenAI/haven-mvp/engine/search"
	"github.com/HavenAI/haven-mvp/engine/semantic"
	"github.com/HavenAI/haven-mvp/pkg/metrics"
	"github.com/HavenAI/haven-mvp/pkg/mid"
	"github.com/HavenAI/haven-mvp/pkg/natsutil"
	"github.com/HavenAI/haven-mvp/pkg/openai"
	"github.com/HavenAI/haven-mvp/pkg/resilience"
)

// Config holds all environment-based configuration.
type Config struct {
	Port         string
	MetricsPort  int
	ListingsPath string
	QdrantURL    string
	Collection   string
	OpenAIKey    string
	OpenAIBase   string
	EmbedModel   string
	EmbedRPS     float64
	RateRPS      float64
	CORSOrigin   string
	NATSURL      string
}

func loadConfig() Config {
	return Config{
		Port:         envOr("PORT", "8080"),
		MetricsPort:  envInt("METRICS_PORT", 9090),
		ListingsPath: envOr("LISTINGS_PATH", "data/listings.psv"),
		QdrantURL:    envOr("QDRANT_URL", "localhost:6334"),
		Collection:   envOr("QDRANT_COLLECTION", "listings"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBase:   os.Getenv("OPENAI_BASE_URL"),
		EmbedModel:   envOr("EMBED_MODEL", "text-embedding-3-small"),
		EmbedRPS:     envFloat("OPENAI_RPS", 5),
		RateRPS:      envFloat("RATE_LIMIT_RPS", 20),
		CORSOrigin:   envOr("CORS_ORIGIN", "*"),
		NATSURL:      os.Getenv("NATS_URL"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Load the listing catalog ---
	cat, err := catalog.Load(cfg.ListingsPath)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", "listings", cat.Len(), "path", cfg.ListingsPath)

	// --- Connect to Qdrant ---
	vectorStore, err := semantic.New(cfg.QdrantURL, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vectorStore.Close()

	// --- Embedding client (optional: searches 503 without it) ---
	var embed search.Embedder
	if cfg.OpenAIKey == "" {
		logger.Warn("OPENAI_API_KEY not set; search requests will be rejected")
	} else {
		client, err := openai.New(openai.Config{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBase,
			Model:   cfg.EmbedModel,
			RPS:     cfg.EmbedRPS,
			Burst:   2,
		}, logger)
		if err != nil {
			return fmt.Errorf("openai client: %w", err)
		}
		embed = client
	}

	svc := search.New(embed, vectorStore, cat, search.DefaultOptions(), logger)

	// --- Metrics ---
	reg := metrics.New()
	reg.ServeAsync(cfg.MetricsPort)
	stopRuntime := reg.CollectRuntime("api", 15*time.Second)
	defer stopRuntime()

	// --- Indexed-listing events (catalog staleness signal) ---
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Drain()
		indexedSince := reg.Counter("api_listings_indexed_since_start_total",
			"Listings indexed since this server loaded its catalog")
		sub, err := natsutil.Subscribe(nc, index.Subject, func(_ context.Context, ev index.IndexedEvent) {
			indexedSince.Inc()
			logger.Info("listing indexed after catalog load; restart to serve it",
				"listing", ev.ListingID, "title", ev.Title)
		})
		if err != nil {
			return fmt.Errorf("nats subscribe: %w", err)
		}
		defer sub.Unsubscribe()
	}

	// --- Build HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/property/filters", handleFilters(cat))
	mux.HandleFunc("POST /api/property/search", handleSearch(svc, reg, logger))

	limiter := resilience.NewLimiter(resilience.LimiterOpts{
		Rate:  cfg.RateRPS,
		Burst: int(cfg.RateRPS) * 2,
	})
	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.RequestID(),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("haven-api"),
		mid.RateLimit(limiter),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
