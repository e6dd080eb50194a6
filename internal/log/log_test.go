package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"DEBUG", logrus.DebugLevel},
		{" warn ", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"info", logrus.InfoLevel},
		{"", logrus.InfoLevel},
		{"verbose", logrus.InfoLevel},
	}
	for _, tt := range tests {
		if got := GetLogLevel(tt.in); got != tt.want {
			t.Errorf("GetLogLevel(%q): want %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestInitLoggerWritesRotatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "dreview.log")

	l, err := InitLogger(Options{Level: "info", File: path})
	if err != nil {
		t.Fatalf("InitLogger: %v", err)
	}

	l.WithField("submission", "abc").Info("review finished")
	l.Debug("hidden at info level")

	all, err := filepath.Glob(path + ".*")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	var matches []string
	for _, m := range all {
		if !strings.Contains(filepath.Base(m), "_") {
			matches = append(matches, m)
		}
	}
	if len(matches) != 1 {
		t.Fatalf("expected one rotated file, got %v", matches)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"msg":"review finished"`) {
		t.Errorf("log file missing record: %s", content)
	}
	if !strings.Contains(content, `"submission":"abc"`) {
		t.Errorf("log file missing field: %s", content)
	}
	if strings.Contains(content, "hidden at info level") {
		t.Error("debug record should be filtered at info level")
	}
}

func TestInitLoggerWithoutFile(t *testing.T) {
	l, err := InitLogger(Options{Level: "error"})
	if err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	if l.GetLevel() != logrus.ErrorLevel {
		t.Errorf("level: want error, got %v", l.GetLevel())
	}
}
