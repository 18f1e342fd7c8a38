package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func getCounterVecValue(cv *prometheus.CounterVec, labels ...string) float64 {
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func getHistogramCount(h prometheus.Histogram) uint64 {
	var m dto.Metric
	if err := h.(prometheus.Metric).Write(&m); err != nil {
		return 0
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetrics_LoadsTotal(t *testing.T) {
	for _, outcome := range []string{"parsed", "cached", "error"} {
		before := getCounterVecValue(LoadsTotal, outcome)
		LoadsTotal.WithLabelValues(outcome).Inc()
		after := getCounterVecValue(LoadsTotal, outcome)

		if after != before+1 {
			t.Errorf("Expected %s counter to increment by 1, got diff %.0f", outcome, after-before)
		}
	}
}

func TestMetrics_MergeKeyTotal(t *testing.T) {
	before := getCounterVecValue(MergeKeyTotal, "id")
	MergeKeyTotal.WithLabelValues("id").Inc()
	after := getCounterVecValue(MergeKeyTotal, "id")

	if after != before+1 {
		t.Errorf("Expected merge key counter to increment by 1, got diff %.0f", after-before)
	}
}

func TestMetrics_CoercionSkipsTotal(t *testing.T) {
	before := getCounterVecValue(CoercionSkipsTotal, "release_year")
	CoercionSkipsTotal.WithLabelValues("release_year").Add(3)
	after := getCounterVecValue(CoercionSkipsTotal, "release_year")

	if after != before+3 {
		t.Errorf("Expected coercion skips to increase by 3, got diff %.0f", after-before)
	}
}

func TestMetrics_FilterDuration(t *testing.T) {
	before := getHistogramCount(FilterDuration)
	FilterDuration.Observe(0.002)
	after := getHistogramCount(FilterDuration)

	if after != before+1 {
		t.Errorf("Expected one more filter duration sample, got diff %d", after-before)
	}
}

func TestMetrics_NewHTTPServer(t *testing.T) {
	srv := NewHTTPServer("localhost", 9090)

	if srv.Addr != "localhost:9090" {
		t.Errorf("Expected address 'localhost:9090', got '%s'", srv.Addr)
	}

	if srv.Handler == nil {
		t.Error("Expected handler to be set")
	}
}

func TestMetrics_NewHTTPServer_DefaultPort(t *testing.T) {
	srv := NewHTTPServer("0.0.0.0", 0)

	if srv.Addr != "0.0.0.0:9090" {
		t.Errorf("Expected address '0.0.0.0:9090', got '%s'", srv.Addr)
	}
}

func TestMetrics_HandlerExposesIngestMetrics(t *testing.T) {
	DashboardsTotal.WithLabelValues("http").Inc()
	srv := NewHTTPServer("localhost", 0)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "cataloglens_dashboards_total") {
		t.Error("Expected cataloglens_dashboards_total in metrics output")
	}
}

func TestMetrics_Healthz(t *testing.T) {
	srv := NewHTTPServer("localhost", 0)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("Expected 200 ok, got %d %q", rec.Code, rec.Body.String())
	}
}
