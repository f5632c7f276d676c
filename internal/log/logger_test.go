// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Output = &buf

	logger := New(cfg)
	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info logged at default level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn not logged at default level")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})

	logger.Info("structured", slog.String(TaskKey, "Save record"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry[TaskKey] != "Save record" {
		t.Errorf("task field = %v", entry[TaskKey])
	}
}

func TestFromEnvDebug(t *testing.T) {
	t.Setenv("EPLOG_DEBUG", "1")
	t.Setenv("EPLOG_LOG_LEVEL", "error")

	cfg := FromEnv()
	if cfg.Level != "debug" {
		t.Errorf("EPLOG_DEBUG should win, got level %q", cfg.Level)
	}
	if !cfg.AddSource {
		t.Error("debug mode should add source info")
	}
}

func TestFromEnvLevel(t *testing.T) {
	t.Setenv("EPLOG_DEBUG", "")
	t.Setenv("EPLOG_LOG_LEVEL", "INFO")

	if cfg := FromEnv(); cfg.Level != "info" {
		t.Errorf("level = %q, want info", cfg.Level)
	}
}

func TestParseLevelFallback(t *testing.T) {
	if parseLevel("bogus") != slog.LevelWarn {
		t.Error("unknown level should fall back to warn")
	}
}

func TestWithRunContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})

	WithRunContext(logger, "run-1", "add-record").Info("task started")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry[RunIDKey] != "run-1" || entry[PipelineKey] != "add-record" {
		t.Errorf("missing run context: %v", entry)
	}
}

func TestSanitizeAPIKey(t *testing.T) {
	if got := SanitizeAPIKey("secret_0123456789"); got != "...6789" {
		t.Errorf("SanitizeAPIKey = %q", got)
	}
	if got := SanitizeAPIKey("abc"); got != "[REDACTED]" {
		t.Errorf("short key = %q", got)
	}
}
