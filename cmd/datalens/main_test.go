package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything written.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	runErr := fn()
	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read pipe: %v", err)
	}
	if runErr != nil {
		t.Fatalf("command failed: %v", runErr)
	}
	return string(out)
}

// offlineCLI resets the global flags so tests never touch the network or
// the user cache directory.
func offlineCLI(t *testing.T) {
	t.Helper()
	CLI.Config = ""
	CLI.Timeout = 0
	CLI.RatesDB = ""
	CLI.Offline = true
}

func TestVersionCmd_Run(t *testing.T) {
	out := captureStdout(t, (&VersionCmd{}).Run)
	if !strings.Contains(out, version) {
		t.Errorf("version output %q missing %q", out, version)
	}
}

func TestConvertCmd_Run_Text(t *testing.T) {
	offlineCLI(t)
	cmd := &ConvertCmd{Input: "691E01B8"}
	out := captureStdout(t, cmd.Run)

	if !strings.Contains(out, "hex") {
		t.Errorf("expected a hex interpretation in output:\n%s", out)
	}
	if !strings.Contains(out, "confidence") {
		t.Errorf("expected confidence header in output:\n%s", out)
	}
}

func TestConvertCmd_Run_JSON(t *testing.T) {
	offlineCLI(t)
	cmd := &ConvertCmd{Input: "1763574200", JSON: true, Formats: []string{"epoch"}}
	out := captureStdout(t, cmd.Run)

	var results []value.Result
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if len(results) != 1 {
		t.Fatalf("filtered convert returned %d results, want 1", len(results))
	}
	if results[0].Interpretation.SourceFormat != "epoch" {
		t.Errorf("SourceFormat = %q, want epoch", results[0].Interpretation.SourceFormat)
	}
	if len(results[0].Conversions) == 0 {
		t.Error("expected at least one conversion for a timestamp")
	}
}

func TestConvertCmd_Run_NoInterpretations(t *testing.T) {
	offlineCLI(t)
	cmd := &ConvertCmd{Input: "1763574200", Formats: []string{"uuid"}}
	out := captureStdout(t, cmd.Run)
	if !strings.Contains(out, "no interpretations") {
		t.Errorf("expected no-interpretations notice, got:\n%s", out)
	}
}

func TestFormatsCmd_Run_JSON(t *testing.T) {
	offlineCLI(t)
	out := captureStdout(t, (&FormatsCmd{JSON: true}).Run)

	var infos []format.Info
	if err := json.Unmarshal([]byte(out), &infos); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	ids := make(map[string]bool, len(infos))
	for _, info := range infos {
		ids[info.ID] = true
	}
	for _, want := range []string{"hex", "base64", "epoch", "text", "currency"} {
		if !ids[want] {
			t.Errorf("formats listing missing %q", want)
		}
	}
}

func TestBuildEngine_ConfigFile(t *testing.T) {
	offlineCLI(t)
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := `{"reinterpret_threshold": 0.9}`
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	CLI.Config = path
	eng, cleanup, err := buildEngine()
	if err != nil {
		t.Fatalf("buildEngine: %v", err)
	}
	defer cleanup()
	if eng == nil {
		t.Fatal("nil engine")
	}
}

func TestBuildEngine_BadConfig(t *testing.T) {
	offlineCLI(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	CLI.Config = path
	if _, _, err := buildEngine(); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestRatesPath_Override(t *testing.T) {
	CLI.RatesDB = "/tmp/custom-rates.db"
	defer func() { CLI.RatesDB = "" }()
	if got := ratesPath(); got != "/tmp/custom-rates.db" {
		t.Errorf("ratesPath() = %q, want override", got)
	}
}
