package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/HavenAI/haven-mvp/engine/catalog"
	"github.com/HavenAI/haven-mvp/engine/domain"
	"github.com/HavenAI/haven-mvp/engine/search"
	"github.com/HavenAI/haven-mvp/pkg/metrics"
)

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleFilters(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, cat.Filters())
	}
}

// SearchRequest is the JSON body for POST /api/property/search.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResponse is the JSON response for POST /api/property/search.
type SearchResponse struct {
	Results  []search.Result `json:"results"`
	Fallback bool            `json:"fallback"`
	Count    int             `json:"count"`
}

func handleSearch(svc *search.Service, reg *metrics.Registry, logger *slog.Logger) http.HandlerFunc {
	latency := reg.Histogram("search_latency_seconds", "Search request latency", nil)
	vectorSearches := reg.Counter(metrics.WithLabels("searches_total", "mode", "vector"), "Searches by mode")
	fallbackSearches := reg.Counter(metrics.WithLabels("searches_total", "mode", "fallback"), "")
	failedSearches := reg.Counter(metrics.WithLabels("searches_total", "mode", "error"), "")

	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer latency.Since(start)

		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := svc.Search(r.Context(), req.Query)
		if err != nil {
			failedSearches.Inc()
			writeSearchError(w, err, logger)
			return
		}

		if resp.Fallback {
			fallbackSearches.Inc()
		} else {
			vectorSearches.Inc()
		}
		writeJSON(w, http.StatusOK, SearchResponse{
			Results:  resp.Results,
			Fallback: resp.Fallback,
			Count:    len(resp.Results),
		})
	}
}

// writeSearchError maps service errors to HTTP statuses. Provider and
// credential problems surface as 503 naming the missing key; validation
// failures are the caller's fault; everything else is a logged 500.
func writeSearchError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var credErr *search.CredentialError
	if errors.As(err, &credErr) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":      "semantic search is not configured",
			"missingKey": credErr.Key,
		})
		return
	}

	var authErr *search.AuthError
	if errors.As(err, &authErr) {
		logger.Error("embedding provider rejected credentials", "provider", authErr.Provider, "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":      "embedding provider rejected the configured credentials",
			"missingKey": authErr.Key,
		})
		return
	}

	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		errorJSON(w, http.StatusBadRequest, valErr.Error())
		return
	}

	logger.Error("search failed", "err", err)
	errorJSON(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
