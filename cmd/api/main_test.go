package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/HavenAI/haven-mvp/engine/catalog"
	"github.com/HavenAI/haven-mvp/engine/domain"
	"github.com/HavenAI/haven-mvp/engine/search"
	"github.com/HavenAI/haven-mvp/engine/semantic"
	"github.com/HavenAI/haven-mvp/pkg/metrics"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2}, nil
}

type stubSearcher struct {
	hits []semantic.Hit
}

func (s *stubSearcher) Search(context.Context, []float32, int) ([]semantic.Hit, error) {
	return s.hits, nil
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]domain.Listing{
		{ID: 1, Title: "Camden flat", Location: "Camden, London", Type: "Flat",
			Style: "Modern", Bedrooms: 2, Bathrooms: 1, Price: 450_000},
		{ID: 2, Title: "Victorian house", Location: "York", Type: "House",
			Style: "Victorian", Bedrooms: 4, Bathrooms: 2, Price: 800_000},
	})
}

func testService(embed search.Embedder, hits []semantic.Hit) *search.Service {
	return search.New(embed, &stubSearcher{hits: hits}, testCatalog(), search.DefaultOptions(), slog.Default())
}

func postSearch(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/property/search", strings.NewReader(body)))
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	handleHealth(rec, httptest.NewRequest("GET", "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleFilters(t *testing.T) {
	rec := httptest.NewRecorder()
	handleFilters(testCatalog())(rec, httptest.NewRequest("GET", "/api/property/filters", nil))

	var f catalog.Filters
	if err := json.Unmarshal(rec.Body.Bytes(), &f); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(f.Types) != 2 || f.Types[0] != "Flat" {
		t.Errorf("Types = %v", f.Types)
	}
	if f.Price.Max != 800_000 {
		t.Errorf("Price.Max = %g", f.Price.Max)
	}
}

func TestHandleSearchSuccess(t *testing.T) {
	h := handleSearch(testService(&stubEmbedder{}, []semantic.Hit{{ID: 1, Score: 0.9}}), metrics.New(), slog.Default())
	rec := postSearch(t, h, `{"query":"2 bed flat"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if resp.Count != 1 || resp.Fallback {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHandleSearchMissingKey(t *testing.T) {
	h := handleSearch(testService(nil, nil), metrics.New(), slog.Default())
	rec := postSearch(t, h, `{"query":"2 bed flat"}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["missingKey"] != "OPENAI_API_KEY" {
		t.Errorf("missingKey = %q", body["missingKey"])
	}
}

func TestHandleSearchAuthFailure(t *testing.T) {
	h := handleSearch(testService(&stubEmbedder{err: errors.New("401 invalid api key")}, nil), metrics.New(), slog.Default())
	rec := postSearch(t, h, `{"query":"2 bed flat"}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleSearchEmptyQuery(t *testing.T) {
	h := handleSearch(testService(&stubEmbedder{}, nil), metrics.New(), slog.Default())
	rec := postSearch(t, h, `{"query":"  "}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSearchBadBody(t *testing.T) {
	h := handleSearch(testService(&stubEmbedder{}, nil), metrics.New(), slog.Default())
	rec := postSearch(t, h, `{not json`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSearchFallsBackOnProviderError(t *testing.T) {
	h := handleSearch(testService(&stubEmbedder{err: errors.New("connection refused")}, nil), metrics.New(), slog.Default())
	rec := postSearch(t, h, `{"query":"flat in Camden"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp SearchResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Fallback {
		t.Error("fallback flag should be set")
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("HAVEN_TEST_STR", "x")
	t.Setenv("HAVEN_TEST_INT", "42")
	t.Setenv("HAVEN_TEST_FLOAT", "2.5")

	if envOr("HAVEN_TEST_STR", "y") != "x" {
		t.Error("envOr should prefer the set value")
	}
	if envOr("HAVEN_TEST_MISSING", "y") != "y" {
		t.Error("envOr should fall back")
	}
	if envInt("HAVEN_TEST_INT", 0) != 42 {
		t.Error("envInt should parse")
	}
	if envInt("HAVEN_TEST_STR", 7) != 7 {
		t.Error("envInt should fall back on junk")
	}
	if envFloat("HAVEN_TEST_FLOAT", 0) != 2.5 {
		t.Error("envFloat should parse")
	}
}
