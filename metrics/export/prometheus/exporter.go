package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	rategate "github.com/rategate/rategate"
)

type metricsSource interface {
	MetricsSnapshot() rategate.MetricsSnapshot
	AuditDropped() uint64
}

// Exporter renders gate metrics in Prometheus text exposition format.
type Exporter struct {
	source metricsSource
}

// NewExporter creates an exporter that reads from the given [rategate.Gate].
func NewExporter(gate *rategate.Gate) *Exporter {
	return &Exporter{source: gate}
}

// NewExporterFromSource creates an exporter from a custom snapshot source.
func NewExporterFromSource(source metricsSource) *Exporter {
	return &Exporter{source: source}
}

// Handler returns an http.Handler that serves the metrics.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(e.Render()))
	})
}

type counterDef struct {
	name string
	help string
	get  func(rategate.MetricsSnapshot) uint64
}

var counterDefs = []counterDef{
	{"rategate_allowed_total", "Requests that passed the gate.",
		func(s rategate.MetricsSnapshot) uint64 { return s.Allowed }},
	{"rategate_blocked_total", "Requests rejected in blocking mode.",
		func(s rategate.MetricsSnapshot) uint64 { return s.Blocked }},
	{"rategate_over_limit_log_only_total", "Over-limit decisions that were only logged.",
		func(s rategate.MetricsSnapshot) uint64 { return s.OverLimitLogOnly }},
	{"rategate_errors_counted_total", "Guarded failures that matched the error predicate.",
		func(s rategate.MetricsSnapshot) uint64 { return s.ErrorsCounted }},
	{"rategate_store_errors_total", "Transport-level store failures.",
		func(s rategate.MetricsSnapshot) uint64 { return s.StoreErrors }},
	{"rategate_fail_open_total", "Requests allowed because the store was down.",
		func(s rategate.MetricsSnapshot) uint64 { return s.FailOpen }},
	{"rategate_fallback_blocked_total", "Requests rejected by the local fallback limiter.",
		func(s rategate.MetricsSnapshot) uint64 { return s.FallbackBlocked }},
}

// Render returns the current metrics in Prometheus text exposition format.
func (e *Exporter) Render() string {
	if e == nil || e.source == nil {
		return ""
	}

	snapshot := e.source.MetricsSnapshot()

	var b strings.Builder
	b.Grow(2048)

	for _, def := range counterDefs {
		writeCounter(&b, def.name, def.help, def.get(snapshot))
	}
	writeCounter(&b, "rategate_audit_dropped_total",
		"Dropped audit events due to dispatcher backpressure.", e.source.AuditDropped())

	return b.String()
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteString(" ")
	b.WriteString(help)
	b.WriteString("\n# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
	b.WriteString(name)
	b.WriteString(" ")
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteString("\n")
}
