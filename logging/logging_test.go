package logging

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWarningFallsBackToStandardLogger(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	LogWarning("skipping %s", "broken.png")
	LogInfo("not shown")

	out := buf.String()
	if !strings.Contains(out, "WARNING: skipping broken.png") {
		t.Errorf("standard log output = %q, want the warning", out)
	}
	if strings.Contains(out, "not shown") {
		t.Error("info messages should not reach the standard logger")
	}
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	if err := SetupLogger(path); err != nil {
		t.Fatalf("SetupLogger() error = %v", err)
	}
	if !Enabled() {
		t.Fatal("Enabled() = false after SetupLogger")
	}

	DebugLog("walking %s", "dataset")
	LogError("boom %d", 1)
	LogImageProcessed("a.png", true, "")
	LogImageProcessed("b.png", false, "bad header")
	CloseLogger()

	if Enabled() {
		t.Error("Enabled() = true after CloseLogger")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		"walking dataset",
		"ERROR: boom 1",
		"PROCESSED: a.png",
		"FAILED: b.png - Error: bad header",
		"debug log closed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log file missing %q", want)
		}
	}
}
