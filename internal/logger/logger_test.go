package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

// SetupがJSON形式でログを出力することを検証
func TestSetup_OutputsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf)

	logger.Info("test message", slog.String("key", "value"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v", err)
	}
	if entry["msg"] != "test message" {
		t.Errorf("msg = %v, want %q", entry["msg"], "test message")
	}
	if entry["key"] != "value" {
		t.Errorf("key = %v, want %q", entry["key"], "value")
	}
}

// DebugレベルのログがInfoレベル設定で抑制されることを検証
func TestSetup_SuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf)

	logger.Debug("should not appear")

	if buf.Len() != 0 {
		t.Errorf("debug log should be suppressed, got %q", buf.String())
	}
}

// SetupDefaultがグローバルロガーを差し替えることを検証
func TestSetupDefault_ReplacesGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	SetupDefault(&buf)

	slog.Info("global message")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v", err)
	}
	if entry["msg"] != "global message" {
		t.Errorf("msg = %v, want %q", entry["msg"], "global message")
	}
}
