package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevelAndFormat(t *testing.T) {
	if ParseLevel("WARNING") != Warn || ParseLevel("") != Info || ParseLevel("nope") != Info {
		t.Fatalf("unexpected level parsing")
	}
	if ParseFormat("JSON") != FormatJSON || ParseFormat("") != FormatText {
		t.Fatalf("unexpected format parsing")
	}
}

func TestJSONLogger_FieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatJSON, App: "pets", Out: &buf})

	l.Debug("hidden", nil)
	l.With(map[string]any{"request_id": "r-1", "": "dropped"}).
		Warn("persist failed", map[string]any{"key": "pets", "err": errors.New("boom")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	want := map[string]any{
		"level":      "warn",
		"message":    "persist failed",
		"app":        "pets",
		"request_id": "r-1",
		"key":        "pets",
		"err":        "boom",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Fatalf("field %s: expected %v, got %v", k, v, entry[k])
		}
	}
	if _, ok := entry[""]; ok {
		t.Fatalf("empty key should be dropped")
	}
}

func TestTextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Debug, Format: FormatText, Out: &buf})

	l.Info("pet deleted", map[string]any{"pet_id": "p1"})

	out := buf.String()
	if !strings.Contains(out, "pet deleted") || !strings.Contains(out, "pet_id=p1") {
		t.Fatalf("unexpected text output %q", out)
	}
}
