package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "", want: zapcore.InfoLevel},
		{in: "debug", want: zapcore.DebugLevel},
		{in: "WARN", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q) error = nil, want error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	if _, _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

// TestNew_ErrorFileReceivesOnlyErrors verifies the error-file tee.
func TestNew_ErrorFileReceivesOnlyErrors(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "etl_log.txt")
	logger, closeFn, err := New(Options{Level: "debug", Format: "json", ErrorFile: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("pipeline: stage done")
	logger.Error("pipeline: load failed")
	closeFn()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read error file: %v", err)
	}
	got := string(b)
	if !strings.Contains(got, "pipeline: load failed") {
		t.Fatalf("error file missing error entry: %q", got)
	}
	if strings.Contains(got, "stage done") {
		t.Fatalf("error file contains info entry: %q", got)
	}
}
