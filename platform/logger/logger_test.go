package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWithFileWritesToRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")

	log := NewWithFile("production", FileOptions{Path: path, MaxSizeMB: 1, MaxBackups: 1})
	log.DispatchOutcome("ORD-1", "simulated", "SF-1234567")
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"consignment_id":"SF-1234567"`) {
		t.Fatalf("expected dispatch entry in log file, got %s", data)
	}
}

func TestNewWithFileWithoutPathFallsBackToStdout(t *testing.T) {
	log := NewWithFile("development", FileOptions{})
	if log.closer != nil {
		t.Fatal("expected no file sink without a path")
	}
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
