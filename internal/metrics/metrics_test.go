package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(transactionWrites.WithLabelValues("create", "expense"))
	TransactionWritten("create", "expense")
	if got := testutil.ToFloat64(transactionWrites.WithLabelValues("create", "expense")); got != before+1 {
		t.Errorf("transaction writes = %v, want %v", got, before+1)
	}

	okBefore := testutil.ToFloat64(eventsPublished.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(eventsPublished.WithLabelValues("error"))
	EventPublished(nil)
	EventPublished(errors.New("broker down"))
	if testutil.ToFloat64(eventsPublished.WithLabelValues("ok")) != okBefore+1 {
		t.Error("ok result not counted")
	}
	if testutil.ToFloat64(eventsPublished.WithLabelValues("error")) != errBefore+1 {
		t.Error("error result not counted")
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveRequest("GET", 200, 15*time.Millisecond)
	RateLimited()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`moneytracker_http_requests_total{code="200",method="GET"}`,
		"moneytracker_http_request_duration_seconds_bucket",
		"moneytracker_http_rate_limited_total",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
