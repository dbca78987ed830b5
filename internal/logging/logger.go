package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/kingrea/ritual/internal/config"
)

// Logger writes human-readable lines to stderr and, for initialised
// projects, appends JSON lines to .ritual/logs/ritual.log so users can
// inspect past runs.
type Logger struct {
	*logrus.Entry
	file *os.File
}

// Options configure a Logger.
type Options struct {
	Verbose bool
	// Stderr overrides the console writer (tests).
	Stderr io.Writer
}

// New creates a logger for cfg. The log file is only opened when the project
// has a .ritual directory.
func New(cfg *config.Config, opts Options) (*Logger, error) {
	base := logrus.New()
	base.SetOutput(consoleWriter(opts.Stderr))
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	base.SetLevel(logrus.InfoLevel)
	if opts.Verbose {
		base.SetLevel(logrus.DebugLevel)
	}

	l := &Logger{Entry: logrus.NewEntry(base)}
	if cfg == nil || !cfg.Initialized() {
		return l, nil
	}
	if err := os.MkdirAll(cfg.LogsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(cfg.LogsDir(), "ritual.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	l.file = f
	base.AddHook(&fileHook{writer: f, formatter: &logrus.JSONFormatter{}})
	return l, nil
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// With returns a logger carrying an extra field, sharing the same file.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{Entry: l.Entry.WithField(key, value), file: l.file}
}

func consoleWriter(w io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return os.Stderr
}

// fileHook mirrors each logged entry into the log file as JSON.
type fileHook struct {
	writer    io.Writer
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(line)
	return err
}
