package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("production", &buf)

	log.AuthEvent("login", "asha@example.com", false, "invalid credentials")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "auth_event" || entry["reason"] != "invalid credentials" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestDevelopmentLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New("development", &buf)

	log.StaleResult("assigned", 1, 2)

	if !strings.Contains(buf.String(), "stale_result_dropped") {
		t.Fatalf("debug line missing: %q", buf.String())
	}
}

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := New("production", &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
	log.WithContext(ctx).Info("hello")

	if !strings.Contains(buf.String(), `"request_id":"req-42"`) {
		t.Fatalf("request_id missing: %q", buf.String())
	}
}
