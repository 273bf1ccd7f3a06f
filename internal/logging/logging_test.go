package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_TagsComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelDebug, "text", &buf)

	New("builder").Debug("record built", "id", "f-1")

	out := buf.String()
	if !strings.Contains(out, "component=builder") {
		t.Errorf("want component=builder, got: %s", out)
	}
	if !strings.Contains(out, "id=f-1") {
		t.Errorf("want id=f-1, got: %s", out)
	}
}

func TestInit_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelInfo, "json", &buf)

	New("store").Info("run saved")

	out := buf.String()
	if !strings.Contains(out, `"level":"INFO"`) || !strings.Contains(out, `"component":"store"`) {
		t.Errorf("want JSON level and component fields, got: %s", out)
	}
}

func TestInit_LevelGating(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelWarn, "text", &buf)

	logger := New("timeline")
	logger.Info("lookup ok")
	logger.Warn("lookup unavailable")

	out := buf.String()
	if strings.Contains(out, "lookup ok") {
		t.Error("info line should be suppressed at warn level")
	}
	if !strings.Contains(out, "lookup unavailable") {
		t.Error("warn line should appear at warn level")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, "INFO": slog.LevelInfo, "": slog.LevelInfo,
		"warning": slog.LevelWarn, "error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q): got %v, %v want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel accepted an unknown level")
	}
}

func TestSetup_RejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup("info", "xml", &buf); err == nil {
		t.Error("Setup accepted format xml")
	}
	if err := Setup("debug", "json", &buf); err != nil {
		t.Errorf("Setup: %v", err)
	}
}
