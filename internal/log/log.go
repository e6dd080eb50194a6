package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/mrnim94/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

// Options control where log records go.
type Options struct {
	Level  string        // debug, info, warn or error
	File   string        // base path of the rotated log file; empty disables file output
	Stderr bool          // also print records to stderr
	MaxAge time.Duration // rotated files older than this are removed; 0 = 7 days
}

const defaultMaxAge = 7 * 24 * time.Hour

// InitLogger builds the process logger. Callers pass it down as a
// logrus.FieldLogger.
// The TUI passes Stderr=false so records never reach the terminal it draws on.
func InitLogger(opts Options) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetLevel(GetLogLevel(opts.Level))
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
	if opts.Stderr {
		l.SetOutput(os.Stderr)
	} else {
		l.SetOutput(io.Discard)
	}

	if opts.File != "" {
		hook, err := newFileHook(opts.File, opts.MaxAge)
		if err != nil {
			return nil, err
		}
		l.AddHook(hook)
	}

	return l, nil
}

func newFileHook(path string, maxAge time.Duration) (logrus.Hook, error) {
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	writer, err := rotatelogs.New(
		path+".%Y%m%d",
		rotatelogs.WithLinkName(path),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(maxAge),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return lfshook.NewHook(lfshook.WriterMap{
		logrus.DebugLevel: writer,
		logrus.InfoLevel:  writer,
		logrus.WarnLevel:  writer,
		logrus.ErrorLevel: writer,
		logrus.FatalLevel: writer,
		logrus.PanicLevel: writer,
	}, &logrus.JSONFormatter{TimestampFormat: time.RFC3339}), nil
}

// GetLogLevel parses a level name, falling back to info.
func GetLogLevel(name string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "trace":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
