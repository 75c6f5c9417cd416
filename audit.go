package rategate

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

const (
	auditEventAllowed       = "request_allowed"
	auditEventBlocked       = "request_blocked"
	auditEventOverLimit     = "over_limit_log_only"
	auditEventFailOpen      = "store_error_fail_open"
	auditEventErrorCounted  = "error_counted"
	auditEventFallbackBlock = "fallback_blocked"
)

// AuditEvent describes one gate decision.
type AuditEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	Partition string    `json:"partition"`
	Count     int64     `json:"count"`
	Limit     int64     `json:"limit"`
	Allowed   bool      `json:"allowed"`
	Error     string    `json:"error,omitempty"`
}

// AuditSink receives emitted decision events.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink writes audit events into a buffered channel.
type ChannelSink struct {
	events chan AuditEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink writes one JSON line per event to an io.Writer.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
