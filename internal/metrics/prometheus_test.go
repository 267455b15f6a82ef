package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_CountsAndExposes(t *testing.T) {
	r := New()
	r.ObserveUpstream("yahoo", "ok", 20*time.Millisecond)
	r.ObserveUpstream("yahoo", "no_data", 5*time.Millisecond)
	r.CountCalculation("ok")
	r.CountCalculation("ok")

	if got := testutil.ToFloat64(r.upstreamResults.WithLabelValues("yahoo", "ok")); got != 1 {
		t.Fatalf("upstream ok=%v, want 1", got)
	}
	if got := testutil.ToFloat64(r.calculations.WithLabelValues("ok")); got != 2 {
		t.Fatalf("calculations ok=%v, want 2", got)
	}

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	for _, name := range []string{"stockreturn_upstream_duration_seconds", "stockreturn_calculations_total", "go_goroutines"} {
		if !strings.Contains(string(body), name) {
			t.Fatalf("metrics output missing %s", name)
		}
	}
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.CountCalculation("ok")
	if got := testutil.ToFloat64(b.calculations.WithLabelValues("ok")); got != 0 {
		t.Fatalf("registries should be isolated, got %v", got)
	}
}
