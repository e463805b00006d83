package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorRecords(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordFetch("forecast2hr", "primary", "200")
	c.RecordFetch("forecast2hr", "primary", "200")
	c.RecordFallback("forecast2hr")
	c.RecordRefresh("forecast2hr", 0.2, 1700000000, nil)
	c.RecordRefresh("temperature", 0.1, 1700000000, errors.New("boom"))

	if got := testutil.ToFloat64(c.FetchRequestsTotal.WithLabelValues("forecast2hr", "primary", "200")); got != 2 {
		t.Errorf("fetch requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.FallbacksTotal.WithLabelValues("forecast2hr")); got != 1 {
		t.Errorf("fallbacks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.RefreshErrorsTotal.WithLabelValues("temperature")); got != 1 {
		t.Errorf("refresh errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.LastSuccess.WithLabelValues("forecast2hr")); got != 1700000000 {
		t.Errorf("last success = %v, want 1700000000", got)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.RecordFetch("pm25", "primary", "200")
	c.RecordFallback("pm25")
	c.RecordRefresh("pm25", 1, 1, nil)
}
