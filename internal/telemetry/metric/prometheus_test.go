package metric

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry_Observe(t *testing.T) {
	r := NewRegistry()

	r.TokensIssued.Inc()
	r.ObserveRateLimit("chat", true)
	r.ObserveRateLimit("chat", false)
	r.ObserveRateLimit("chat", false)
	r.ObserveRequest("/api/chat", "POST", 429, 3*time.Millisecond)
	r.ObserveUpstream("openai", errors.New("timeout"), time.Second)

	if got := testutil.ToFloat64(r.TokensIssued); got != 1 {
		t.Errorf("tokens issued = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.RateLimitDecision.WithLabelValues("chat", "denied")); got != 2 {
		t.Errorf("denied = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.RequestsTotal.WithLabelValues("/api/chat", "POST", "429")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(r.UpstreamDuration); n != 1 {
		t.Errorf("upstream series = %d, want 1", n)
	}
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.TokensIssued.Add(3)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(string(body), "cardchat_csrf_tokens_issued_total 3") {
		t.Error("exposition missing the token counter")
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("exposition missing runtime metrics")
	}
}
