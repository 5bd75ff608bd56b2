package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/kvmemo/kvmemo/internal/clock"
	"github.com/kvmemo/kvmemo/internal/engine"
	"github.com/kvmemo/kvmemo/internal/eviction"
	"github.com/kvmemo/kvmemo/internal/logging"
	"github.com/kvmemo/kvmemo/internal/memory"
	"github.com/kvmemo/kvmemo/internal/metrics"
	"github.com/kvmemo/kvmemo/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	c := clock.NewManual(1000)
	shards, err := store.NewManager(2, 0, c)
	if err != nil {
		t.Fatal(err)
	}
	tracker := memory.New(0)
	evictMgr := eviction.NewManager(eviction.NewRecencyPolicy(), tracker)
	e := engine.New(engine.Config{MaxValueBytes: 1024, EnableTTL: true}, shards, evictMgr, c, logging.Noop{}, metrics.Noop{})
	return New(":0", e, metrics.NewSimple())
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v, want status=ok", body)
	}
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.engine.Set("a", []byte("hello"), 0)

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["key_count"].(float64) != 1 {
		t.Fatalf("key_count = %v, want 1", body["key_count"])
	}
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
