package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
)

// Config controls logger output. Logs always go to stderr so that stdout
// stays reserved for the stdio MCP transport; OutputFile adds an append-only
// file with size-based rotation.
type Config struct {
	Level      string
	OutputFile string
	MaxSizeMB  int64
}

var (
	log     = slog.New(tint.NewHandler(os.Stderr, nil))
	logFile *os.File
)

func ParseLevel(level string) slog.Level {
	switch level {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "warn", "WARNING", "warning":
		return slog.LevelWarn
	case "ERROR", "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Initialize(cfg Config) error {
	writer := io.Writer(os.Stderr)

	if cfg.OutputFile != "" {
		dir := filepath.Dir(cfg.OutputFile)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
		}

		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		if err := rotateLogIfNeeded(cfg.OutputFile, maxSize*1024*1024); err != nil {
			return fmt.Errorf("failed to rotate log: %w", err)
		}

		file, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = file
		writer = io.MultiWriter(os.Stderr, file)
	}

	log = slog.New(tint.NewHandler(writer, &tint.Options{
		Level:   ParseLevel(cfg.Level),
		NoColor: cfg.OutputFile != "",
	}))
	return nil
}

func rotateLogIfNeeded(filename string, maxSize int64) error {
	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if info.Size() >= maxSize {
		timestamp := time.Now().Format("20060102-150405")
		backupName := fmt.Sprintf("%s.%s", filename, timestamp)
		if err := os.Rename(filename, backupName); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	return nil
}

// L returns the package logger.
func L() *slog.Logger {
	return log
}

func Debug(msg string, args ...any) { log.Debug(msg, args...) }
func Info(msg string, args ...any)  { log.Info(msg, args...) }
func Warn(msg string, args ...any)  { log.Warn(msg, args...) }

func Error(msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	log.Error(msg, args...)
}

// LogDatabaseOperation records a single statement execution. The statement
// text is truncated to keep log lines bounded.
func LogDatabaseOperation(operation, query string, rows int64, err error) {
	if len(query) > 100 {
		query = query[:100] + "..."
	}
	if err != nil {
		Error("database operation failed", err, "operation", operation, "query", query)
		return
	}
	Info("database operation completed", "operation", operation, "query", query, "rows", rows)
}

func LogConnectionEvent(event, connectionName string, err error) {
	if err != nil {
		Error("connection event failed", err, "event", event, "connection", connectionName)
		return
	}
	Info("connection event completed", "event", event, "connection", connectionName)
}

func LogToolCall(toolName string, err error) {
	if err != nil {
		Error("tool call failed", err, "tool", toolName)
		return
	}
	Info("tool call completed", "tool", toolName)
}

func Shutdown() error {
	if logFile != nil {
		return logFile.Close()
	}
	return nil
}
