package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RowanDark/xorsift/internal/redact"
)

func TestAuditLoggerEmit(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := NewAuditLogger("search", WithoutStdout(), WithWriter(buf))
	if err != nil {
		t.Fatalf("NewAuditLogger: %v", err)
	}

	event := AuditEvent{EventType: EventRunStarted, Metadata: map[string]any{"mode": "exhaustive"}}
	if err := logger.WithRun("run-1").Emit(event); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	var decoded AuditEvent
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if decoded.Component != "search" {
		t.Fatalf("expected component 'search', got %q", decoded.Component)
	}
	if decoded.RunID != "run-1" {
		t.Fatalf("expected run id to be stamped, got %q", decoded.RunID)
	}
	if decoded.EventType != EventRunStarted {
		t.Fatalf("expected event type %q, got %q", EventRunStarted, decoded.EventType)
	}
	if decoded.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}
}

func TestAuditLoggerRedactsKeyMaterial(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := NewAuditLogger("search", WithoutStdout(), WithWriter(buf))
	if err != nil {
		t.Fatalf("NewAuditLogger: %v", err)
	}
	if err := logger.Emit(AuditEvent{
		EventType: EventRunStarted,
		Metadata:  map[string]any{"key_text": "topsecret", "key_length": 9},
	}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	line := buf.String()
	if strings.Contains(line, "topsecret") {
		t.Fatalf("key material written raw: %s", line)
	}
	if !strings.Contains(line, redact.Fingerprint([]byte("topsecret"))) {
		t.Fatalf("expected fingerprint in %s", line)
	}
}

func TestAuditLoggerWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	logger, err := NewAuditLogger("cli", WithoutStdout(), WithFile(path))
	if err != nil {
		t.Fatalf("NewAuditLogger: %v", err)
	}
	for _, et := range []EventType{EventRunStarted, EventCombinationSkipped, EventRunCompleted} {
		if err := logger.Emit(AuditEvent{EventType: et}); err != nil {
			t.Fatalf("Emit %s: %v", et, err)
		}
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer f.Close()
	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	if lines != 3 {
		t.Fatalf("expected 3 journal lines, got %d", lines)
	}
}

func TestAuditLoggerRequiresWriter(t *testing.T) {
	if _, err := NewAuditLogger("x", WithoutStdout()); err == nil {
		t.Fatalf("expected error when every writer is removed")
	}
}

func TestNilAuditLoggerDropsEvents(t *testing.T) {
	var logger *AuditLogger
	if err := logger.Emit(AuditEvent{EventType: EventRunStarted}); err != nil {
		t.Fatalf("nil logger should drop events, got %v", err)
	}
	if logger.WithRun("r") != nil {
		t.Fatalf("expected nil from WithRun on nil logger")
	}
}
