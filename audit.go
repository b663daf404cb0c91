package goJobs

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AuditEvent is one security-relevant fact. Token strings are never included.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	Subject   string            `json:"subject,omitempty"`
	Kind      string            `json:"kind,omitempty"`
	TokenID   string            `json:"token_id,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

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

// LogrusAuditSink writes each event as one structured log line at Info, or Warn for
// failures.
type LogrusAuditSink struct {
	log logrus.FieldLogger
}

func NewLogrusAuditSink(log logrus.FieldLogger) *LogrusAuditSink {
	return &LogrusAuditSink{log: log}
}

func (s *LogrusAuditSink) Emit(_ context.Context, event AuditEvent) {
	if s == nil || s.log == nil {
		return
	}
	fields := logrus.Fields{
		"component":  "audit",
		"event_type": event.EventType,
		"success":    event.Success,
	}
	if event.Subject != "" {
		fields["subject"] = event.Subject
	}
	if event.Kind != "" {
		fields["kind"] = event.Kind
	}
	if event.TokenID != "" {
		fields["token_id"] = event.TokenID
	}
	if event.RequestID != "" {
		fields["request_id"] = event.RequestID
	}
	if event.IP != "" {
		fields["ip"] = event.IP
	}
	if event.Error != "" {
		fields["error"] = event.Error
	}
	for k, v := range event.Metadata {
		fields["meta_"+k] = v
	}

	entry := s.log.WithFields(fields)
	if event.Success {
		entry.Info("audit")
		return
	}
	entry.Warn("audit")
}
