// Package prometheus renders rategate metrics in Prometheus text exposition
// format without depending on a Prometheus client library. The exporter reads
// a point-in-time [rategate.MetricsSnapshot] on every scrape.
package prometheus
