// Package iologger provides slog-based logging initialization and configuration.
package iologger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/taillookup/taillookup/pkg/config"
)

// LogFile is the name of the log file in the log directory.
const LogFile = "taillookup.log"

var (
	mu      sync.Mutex
	logFile *os.File
)

// Init sets the global slog logger according to the configuration.
// With the "file" destination, logs are appended to LogFile in logDir.
// Calling Init again replaces the logger and closes the previous file.
func Init(logDir string, cfg config.LogConfig) error {
	writer, file, err := output(logDir, cfg.Destination)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(newHandler(writer, cfg)))

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = file
	return nil
}

func output(logDir, destination string) (io.Writer, *os.File, error) {
	switch destination {
	case "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	case "file":
		logPath := filepath.Join(logDir, LogFile)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, nil, OpenLogFileError(logPath, err)
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, OpenLogFileError(logPath, err)
		}
		return f, f, nil
	default:
		return os.Stderr, nil, nil
	}
}

func newHandler(w io.Writer, cfg config.LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	switch cfg.Format {
	case "text", "tint":
		// tint is rendered as plain text
		return slog.NewTextHandler(w, opts)
	default:
		return slog.NewJSONHandler(w, opts)
	}
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
