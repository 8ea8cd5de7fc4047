package metrics

import (
	"strings"
	"testing"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram("latency_ms", "test", 10, 100)
	h.Observe(5)
	h.Observe(10)
	h.Observe(50)
	h.Observe(500)

	var sb strings.Builder
	h.writeTo(&sb)
	out := sb.String()
	for _, want := range []string{
		`latency_ms_bucket{le="10"} 2`,
		`latency_ms_bucket{le="100"} 3`,
		`latency_ms_bucket{le="+Inf"} 4`,
		"latency_ms_sum 565",
		"latency_ms_count 4",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("histogram missing %q:\n%s", want, out)
		}
	}
}

func TestRenderIncludesRoastCounters(t *testing.T) {
	IncRoastStarted()
	IncRoastFailed()
	ObserveRoastDurationMs(42)

	out := Render()
	for _, want := range []string{
		"# TYPE roast_started_total counter",
		"roast_failed_total",
		"history_save_failed_total",
		"roast_duration_ms_bucket{le=\"100\"}",
		"roast_duration_ms_bucket{le=\"+Inf\"}",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
}
