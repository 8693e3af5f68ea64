package security

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestAuditLogger_WritesJSONL(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewAuditLogger(AuditLoggerConfig{
		Writer: &buf,
		Now:    func() time.Time { return fixed },
	})

	l.Log(AuditEvent{Type: EventToolCall, ToolName: "read_notes", Detail: `{"filename":"a.txt"}`})
	l.Log(AuditEvent{Type: EventToolResult, ToolName: "read_notes"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	var got AuditEvent
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != EventToolCall || got.ToolName != "read_notes" || !got.Timestamp.Equal(fixed) {
		t.Errorf("event = %+v", got)
	}
}

func TestAuditLogger_RedactsWithoutMutatingCaller(t *testing.T) {
	t.Parallel()

	var seen AuditEvent
	l := NewAuditLogger(AuditLoggerConfig{
		Redactor: NewRedactor("top-secret"),
		OnEvent:  func(e AuditEvent) { seen = e },
	})

	md := map[string]string{"arg": "top-secret"}
	l.Log(AuditEvent{Type: EventToolCall, Detail: "uses top-secret", Metadata: md})

	if strings.Contains(seen.Detail, "top-secret") || seen.Metadata["arg"] != RedactPlaceholder {
		t.Errorf("event not redacted: %+v", seen)
	}
	if md["arg"] != "top-secret" {
		t.Error("caller metadata was mutated")
	}
}
