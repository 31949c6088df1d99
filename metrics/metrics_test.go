package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveRequestExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveRequest(http.MethodGet, "/api/cart", 200, 120*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/cart", 200, 80*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "", 500, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := counterValue(mfs, "http_requests_total", map[string]string{"route": "/api/cart", "status": "200"}); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 requests, got %f", got)
	}
	if _, err := counterValue(mfs, "http_requests_total", map[string]string{"route": "unknown", "status": "500"}); err != nil {
		t.Fatalf("empty route should be labelled unknown: %v", err)
	}
}

func TestCacheEventCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.CacheEvent("wishlist", "hit")
	m.CacheEvent("wishlist", "miss")
	m.CacheEvent("wishlist", "hit")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	got, err := counterValue(mfs, "view_cache_events_total", map[string]string{"view": "wishlist", "result": "hit"})
	if err != nil {
		t.Fatalf("fetch cache events: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2 hits, got %f", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest(http.MethodGet, "/", 200, time.Second)
	m.CacheEvent("x", "hit")
	New(nil).CacheEvent("x", "miss")
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.CacheEvent("wishlist", "invalidate")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "view_cache_events_total") {
		t.Fatalf("metrics output missing cache counter")
	}
}

func counterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchesLabels(metric.GetLabel(), labels) {
				return metric.GetCounter().GetValue(), nil
			}
		}
	}
	return 0, fmt.Errorf("metric %q with labels %v not found", name, labels)
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; ok && v == p.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
