package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCounter(t *testing.T) {
	r := New()
	c := r.Counter("requests_total", "Total requests")
	c.Inc()
	c.Add(4)
	if c.Value() != 5 {
		t.Errorf("Value = %d, want 5", c.Value())
	}
	// Same name returns the same counter.
	if r.Counter("requests_total", "") != c {
		t.Error("expected the registered counter")
	}
}

func TestGauge(t *testing.T) {
	r := New()
	g := r.Gauge("inflight", "")
	g.Set(3)
	g.Inc()
	g.Dec()
	if g.Value() != 3 {
		t.Errorf("Value = %d, want 3", g.Value())
	}
}

func TestWithLabels(t *testing.T) {
	got := WithLabels("http_requests_total", "method", "GET", "code", "200")
	want := `http_requests_total{method="GET",code="200"}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	// Odd kv count is left alone.
	if WithLabels("x", "k") != "x" {
		t.Error("odd label pairs should return the bare name")
	}
}

func TestRenderCounterWithLabels(t *testing.T) {
	r := New()
	r.Counter(WithLabels("searches_total", "mode", "vector"), "Searches by mode").Add(2)
	r.Counter(WithLabels("searches_total", "mode", "fallback"), "").Inc()

	out := r.Render()
	for _, want := range []string{
		"# HELP searches_total Searches by mode",
		"# TYPE searches_total counter",
		`searches_total{mode="fallback"} 1`,
		`searches_total{mode="vector"} 2`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderHistogram(t *testing.T) {
	r := New()
	h := r.Histogram("latency_seconds", "Request latency", []float64{0.1, 1})
	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(5)

	out := r.Render()
	for _, want := range []string{
		`latency_seconds_bucket{le="0.1"} 1`,
		`latency_seconds_bucket{le="1"} 2`,
		`latency_seconds_bucket{le="+Inf"} 3`,
		"latency_seconds_count 3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q in:\n%s", want, out)
		}
	}
}

func TestHandlerContentType(t *testing.T) {
	r := New()
	r.Counter("x_total", "").Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "x_total 1") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCollectRuntime(t *testing.T) {
	r := New()
	stop := r.CollectRuntime("test", time.Hour)
	defer stop()

	out := r.Render()
	if !strings.Contains(out, "test_goroutines") {
		t.Errorf("missing goroutines gauge in:\n%s", out)
	}
	if r.Gauge("test_goroutines", "").Value() <= 0 {
		t.Error("goroutine gauge should be positive after the initial sample")
	}
}
