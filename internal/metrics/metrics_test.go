package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spotwidget/internal/services"
	dto "github.com/prometheus/client_model/go"
)

var _ services.Observer = (*Prom)(nil)
var _ Recorder = (*Prom)(nil)

func TestProm(t *testing.T) {
	t.Run("requests", func(t *testing.T) {
		m := NewProm()
		m.ObserveRequest("install", http.MethodPost, 200, 10*time.Millisecond)
		m.ObserveRequest("install", http.MethodPost, 200, 20*time.Millisecond)

		families, err := m.Registry().Gather()
		if err != nil {
			t.Fatalf("gather: %v", err)
		}

		c := findMetric(families, "spotwidget_http_requests_total", map[string]string{"route": "install", "method": "POST", "status": "200"})
		if c == nil || c.GetCounter().GetValue() != 2 {
			t.Fatalf("expected http_requests_total of 2, got %v", c)
		}
		h := findMetric(families, "spotwidget_http_request_duration_seconds", map[string]string{"route": "install", "method": "POST"})
		if h == nil || h.GetHistogram().GetSampleCount() != 2 {
			t.Fatalf("expected 2 latency samples, got %v", h)
		}
	})

	t.Run("upstream", func(t *testing.T) {
		m := NewProm()
		m.ObserveUpstream(services.EndpointPlaylists, "ok", time.Millisecond)
		m.ObserveUpstream(services.EndpointPlaylists, "api_error", time.Millisecond)

		families, err := m.Registry().Gather()
		if err != nil {
			t.Fatalf("gather: %v", err)
		}
		if findMetric(families, "spotwidget_upstream_requests_total", map[string]string{"endpoint": "me/playlists", "outcome": "api_error"}) == nil {
			t.Fatal("expected upstream_requests_total metric")
		}
		h := findMetric(families, "spotwidget_upstream_request_duration_seconds", map[string]string{"endpoint": "me/playlists"})
		if h == nil || h.GetHistogram().GetSampleCount() != 2 {
			t.Fatalf("expected 2 upstream samples, got %v", h)
		}
	})

	t.Run("instances are independent", func(t *testing.T) {
		a, b := NewProm(), NewProm()
		a.ObserveRequest("health", http.MethodGet, 200, 0)

		families, err := b.Registry().Gather()
		if err != nil {
			t.Fatalf("gather: %v", err)
		}
		if findMetric(families, "spotwidget_http_requests_total", map[string]string{"route": "health"}) != nil {
			t.Fatal("expected no cross-registry leakage")
		}
	})

	t.Run("handler", func(t *testing.T) {
		m := NewProm()
		m.ObserveRequest("health", http.MethodGet, 200, time.Millisecond)

		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		body, _ := io.ReadAll(rec.Body)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(string(body), `spotwidget_http_requests_total{method="GET",route="health",status="200"} 1`) {
			t.Errorf("expected request counter in exposition, got:\n%s", body)
		}
		if !strings.Contains(string(body), "go_goroutines") {
			t.Error("expected Go runtime collector output")
		}
	})
}

func findMetric(families []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if labelsMatch(metric.GetLabel(), labels) {
				return metric
			}
		}
	}
	return nil
}

func labelsMatch(pairs []*dto.LabelPair, expected map[string]string) bool {
	if len(expected) == 0 {
		return true
	}
	found := map[string]string{}
	for _, p := range pairs {
		found[p.GetName()] = p.GetValue()
	}
	for k, v := range expected {
		if found[k] != v {
			return false
		}
	}
	return true
}
