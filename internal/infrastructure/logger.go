package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pidimsmart/internal/config"
	"pidimsmart/pkg/contracts"
)

var (
	logFileMu sync.Mutex
	logFile   *os.File
)

// InitializeLogger builds the service logger from cfg and installs it as
// the slog default. Records carry the app name and version, plus the
// trace ID when the context has one.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	out, err := logOutput(cfg)
	if err != nil {
		return nil, err
	}

	logger := slog.New(newHandler(out, cfg.Format, cfg.Level, true)).With(
		slog.String("app", config.AppName),
		slog.String("version", contracts.Version),
	)
	slog.SetDefault(logger)
	return logger, nil
}

// NewTextLogger builds a non-global human readable logger for command line
// tools, with trace IDs injected like the service logger.
func NewTextLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(newHandler(w, "text", level, false))
}

func newHandler(w io.Writer, format, level string, addSource bool) slog.Handler {
	opts := &slog.HandlerOptions{AddSource: addSource, Level: parseLogLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return &traceHandler{Handler: h}
}

// logOutput resolves the console|file|both output mode. An opened file is
// kept for CloseLogFile; a previous one is closed first.
func logOutput(cfg config.LoggingConfig) (io.Writer, error) {
	mode := strings.ToLower(cfg.Output)
	if mode != "file" && mode != "both" {
		return os.Stdout, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", cfg.FilePath, err)
	}

	CloseLogFile()
	logFileMu.Lock()
	logFile = f
	logFileMu.Unlock()

	if mode == "both" {
		return io.MultiWriter(os.Stdout, f), nil
	}
	return f, nil
}

// CloseLogFile closes the log file opened by InitializeLogger, if any
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
