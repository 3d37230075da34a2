package log

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Key struct{}

var LoggerKey = Key{}

// LevelTrace sits below debug and enables request and response bodies in the
// HTTP logs.
const LevelTrace = slog.LevelDebug - 4

// ConfigLevelStringToSlogLevel maps a configured level name. Unknown names map
// to error.
func ConfigLevelStringToSlogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// FileOptions configures the rotating log file.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewFileWriter returns a size rotated writer for path. Parent directories are
// created as needed.
func NewFileWriter(opts FileOptions) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, err
	}
	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	return &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    maxSize,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}, nil
}

// NewLogger builds the CLI logger. Records at level or above go to primary as
// JSON; errors are additionally rendered to console when mirroring is on.
func NewLogger(primary io.Writer, console io.Writer, level slog.Level) *slog.Logger {
	var jsonHandler slog.Handler
	if primary != nil {
		jsonHandler = slog.NewJSONHandler(primary, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: replaceLevelName,
		})
	}
	var consoleHandler slog.Handler
	if console != nil {
		consoleHandler = NewFriendlyErrorHandler(console)
	}
	return slog.New(NewDualHandler(jsonHandler, consoleHandler))
}

func replaceLevelName(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
		return slog.String(slog.LevelKey, "TRACE")
	}
	return a
}
