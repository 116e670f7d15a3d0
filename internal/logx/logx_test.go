package logx

import (
	"os"
	"strings"
	"testing"

	"mcumeson/internal/paths"
)

func TestNewWritesIntoLogsDir(t *testing.T) {
	pp, err := paths.Resolve(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	logger, closer, err := New(pp, "setup")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Printf("toolchain found")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(pp.LogsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "setup-") {
		t.Fatalf("unexpected log files %v", entries)
	}
	data, err := os.ReadFile(pp.LogsDir + string(os.PathSeparator) + entries[0].Name())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "toolchain found") {
		t.Fatalf("log file missing entry: %q", data)
	}
}
