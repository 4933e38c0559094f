package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMetricsServiceSnapshotAggregatesCacheAndRequestStats(t *testing.T) {
	m := NewMetricsService()

	m.RecordCacheOperation(true, 5*time.Millisecond)
	m.RecordCacheOperation(true, 5*time.Millisecond)
	m.RecordCacheOperation(false, 5*time.Millisecond)

	m.ObserveHTTPRequest("GET", "/api/v1/months", 200, 10*time.Millisecond)
	m.ObserveDBQuery("select_attendance", 2*time.Millisecond)

	snap := m.Snapshot()

	if snap.CacheHits != 2 || snap.CacheMisses != 1 {
		t.Fatalf("unexpected cache counts: hits=%d misses=%d", snap.CacheHits, snap.CacheMisses)
	}
	wantRatio := float64(2) / float64(3)
	if snap.CacheHitRatio != wantRatio {
		t.Fatalf("cache_hit_ratio = %v, want %v", snap.CacheHitRatio, wantRatio)
	}
	if snap.RequestsTotal != 1 {
		t.Fatalf("requests_total = %d, want 1", snap.RequestsTotal)
	}
	if snap.DBQueryCount != 1 {
		t.Fatalf("db_query_count = %d, want 1", snap.DBQueryCount)
	}
}

func TestMetricsServiceHandlerServesPrometheusFormat(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest("GET", "/health", 200, time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected a non-empty metrics body")
	}
}

func TestNilMetricsServiceMethodsAreNoOps(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest("GET", "/x", 200, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveCacheWrite(time.Millisecond)
	m.ObserveDBQuery("x", time.Millisecond)

	if snap := m.Snapshot(); snap.RequestsTotal != 0 {
		t.Fatalf("expected zero-value snapshot from nil receiver, got %+v", snap)
	}
	if m.Handler() == nil {
		t.Fatal("expected a non-nil fallback handler from nil receiver")
	}
}
