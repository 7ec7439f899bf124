package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC)
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(data)
}

func TestLogFileNaming(t *testing.T) {
	dir := t.TempDir()
	_, path, err := NewWithOptions(Options{Level: "info", Dir: dir, Now: fixedNow})
	if err != nil {
		t.Fatalf("NewWithOptions() error = %v", err)
	}
	want := filepath.Join(dir, "2024-05-01_12-30-45.log")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}

func TestFileModes(t *testing.T) {
	tests := []struct {
		name      string
		mode      Mode
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{name: "default", mode: ModeDefault, wantInfo: true, wantWarn: true},
		{name: "with board", mode: ModeWithBoard, wantDebug: true, wantInfo: true, wantWarn: true},
		{name: "file no info", mode: ModeFileNoInfo, wantWarn: true},
		{name: "console no info keeps file info", mode: ModeConsoleNoInfo, wantInfo: true, wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, path, err := NewWithOptions(Options{Level: "info", Dir: t.TempDir(), Mode: tt.mode, Now: fixedNow})
			if err != nil {
				t.Fatalf("NewWithOptions() error = %v", err)
			}
			l.Debug("debug-line")
			l.Info("info-line")
			l.Warn("warn-line")
			_ = l.Sync()

			content := readLog(t, path)
			check := func(marker string, want bool) {
				if got := strings.Contains(content, marker); got != want {
					t.Errorf("file contains %q = %v, want %v\n%s", marker, got, want, content)
				}
			}
			check("debug-line", tt.wantDebug)
			check("info-line", tt.wantInfo)
			check("warn-line", tt.wantWarn)
		})
	}
}

func TestNoFileLogMode(t *testing.T) {
	l, path, err := NewWithOptions(Options{Level: "info", Dir: t.TempDir(), Mode: ModeNoFileLog, Now: fixedNow})
	if err != nil {
		t.Fatalf("NewWithOptions() error = %v", err)
	}
	l.Warn("should not reach the file")
	_ = l.Sync()

	if got := readLog(t, path); got != "no-file-log\n" {
		t.Errorf("file content = %q, want %q", got, "no-file-log\n")
	}
}

func TestModeString(t *testing.T) {
	if ModeFileNoInfo.String() != "log-file-no-info" {
		t.Errorf("String() = %q", ModeFileNoInfo.String())
	}
	if Mode(99).String() != "default" {
		t.Errorf("String() = %q", Mode(99).String())
	}
}
