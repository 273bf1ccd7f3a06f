package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the root command with args against a temp DB and returns stdout.
func execute(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--db", db, "--log-level", "error"}, args...))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func bundlePath(name string) string {
	return filepath.Join("..", "..", "internal", "intake", "testdata", name)
}

func TestCLI_AnalyzeShowOverride(t *testing.T) {
	db := filepath.Join(t.TempDir(), "triage.db")

	out, err := execute(t, db, "analyze", bundlePath("nightly.yaml"), "-o", "json")
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}
	var run struct {
		ID      string `json:"id"`
		Records []struct {
			ID string `json:"id"`
		} `json:"records"`
	}
	if err := json.Unmarshal([]byte(out), &run); err != nil {
		t.Fatalf("analyze output: %v\n%s", err, out)
	}
	if run.ID != "nightly-2026-03-02" || len(run.Records) != 3 {
		t.Fatalf("run: got id=%s records=%d", run.ID, len(run.Records))
	}

	out, err = execute(t, db, "runs", "-o", "markdown")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if !strings.Contains(out, "nightly-2026-03-02") {
		t.Errorf("runs output missing run id:\n%s", out)
	}

	out, err = execute(t, db, "override", run.ID, "list-api", "--category", "infrastructure", "--reason", "backend outage")
	if err != nil {
		t.Fatalf("override: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Override #1") {
		t.Errorf("override output: got %q", out)
	}

	out, err = execute(t, db, "show", run.ID, "list-api", "-o", "json")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var shown struct {
		Override *struct {
			Category string `json:"category"`
		} `json:"override"`
	}
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("show output: %v\n%s", err, out)
	}
	if shown.Override == nil || shown.Override.Category != "infrastructure" {
		t.Errorf("show override: got %+v want infrastructure", shown.Override)
	}
}

func TestCLI_AnalyzeDryRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "triage.db")
	if _, err := execute(t, db, "analyze", bundlePath("single.json"), "--dry-run"); err != nil {
		t.Fatalf("analyze --dry-run: %v", err)
	}
	if _, err := os.Stat(db); !os.IsNotExist(err) {
		t.Errorf("dry run created the store: %v", err)
	}
}

func TestCLI_SchemaValidate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "triage.db")
	out, err := execute(t, db, "schema", "--validate", bundlePath("nightly.yaml"))
	if err != nil {
		t.Fatalf("schema --validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "valid bundle") {
		t.Errorf("got %q want a valid bundle message", out)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"failures": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, db, "schema", "--validate", bad); err == nil {
		t.Error("expected an empty failure list to fail validation")
	}
}
