// Package metrics keeps process-local counters and renders them in the
// Prometheus text exposition format at /api/v1/metrics.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

type counter struct {
	name string
	help string
	n    atomic.Uint64
}

var (
	roastsStarted     = &counter{name: "roast_started_total", help: "Total roasts started"}
	roastsCompleted   = &counter{name: "roast_completed_total", help: "Total roasts completed"}
	roastsFailed      = &counter{name: "roast_failed_total", help: "Total roasts failed"}
	historySaveFailed = &counter{name: "history_save_failed_total", help: "Completed roasts not saved to history"}
	extractFailed     = &counter{name: "extract_failed_total", help: "Uploads that could not be converted to text"}

	counters = []*counter{roastsStarted, roastsCompleted, roastsFailed, historySaveFailed, extractFailed}

	roastDuration = newHistogram("roast_duration_ms", "Roast duration in milliseconds",
		100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000)
)

func IncRoastStarted()   { roastsStarted.n.Add(1) }
func IncRoastCompleted() { roastsCompleted.n.Add(1) }
func IncRoastFailed()    { roastsFailed.n.Add(1) }

// IncHistorySaveFailed counts finished roasts whose history write failed.
func IncHistorySaveFailed() { historySaveFailed.n.Add(1) }

func IncExtractFailed() { extractFailed.n.Add(1) }

// ObserveRoastDurationMs records one analysis call. Negative values count as zero.
func ObserveRoastDurationMs(ms float64) {
	roastDuration.Observe(max(ms, 0))
}

func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

func Render() string {
	var sb strings.Builder
	for _, c := range counters {
		fmt.Fprintf(&sb, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", c.name, c.help, c.name, c.name, c.n.Load())
	}
	roastDuration.writeTo(&sb)
	return sb.String()
}

// histogram stores per-bucket counts; writeTo accumulates them for exposition.
type histogram struct {
	name, help string
	bounds     []float64

	mu     sync.Mutex
	counts []uint64 // len(bounds)+1, the last slot is +Inf
	sum    float64
}

func newHistogram(name, help string, bounds ...float64) *histogram {
	return &histogram{name: name, help: help, bounds: bounds, counts: make([]uint64, len(bounds)+1)}
}

func (h *histogram) Observe(v float64) {
	i := sort.SearchFloat64s(h.bounds, v)
	h.mu.Lock()
	h.counts[i]++
	h.sum += v
	h.mu.Unlock()
}

func (h *histogram) writeTo(w io.Writer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", h.name, h.help, h.name)
	var total uint64
	for i, c := range h.counts {
		total += c
		le := "+Inf"
		if i < len(h.bounds) {
			le = strconv.FormatFloat(h.bounds[i], 'f', -1, 64)
		}
		fmt.Fprintf(w, "%s_bucket{le=%q} %d\n", h.name, le, total)
	}
	fmt.Fprintf(w, "%s_sum %s\n%s_count %d\n", h.name, strconv.FormatFloat(h.sum, 'f', -1, 64), h.name, total)
}
