package logger

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the level, format and outputs of the logger.
type Config struct {
	// Level: "debug", "info", "warn", "error" (default "info").
	Level string
	// Format: "json" or "text" (default "json").
	Format string
	// Console enables logging to stdout.
	Console bool
	// File enables logging to a rotated file at this path.
	File string
	// MaxSize is the size in megabytes at which the file is rolled.
	MaxSize int
	// MaxBackups is the number of rolled files to keep.
	MaxBackups int
	// MaxAge is the number of days to keep rolled files.
	MaxAge int
}

// New returns a structured logger with the given level and format writing to
// stdout. It is the console-only form of NewWithConfig.
func New(level, format string) *slog.Logger {
	log, _ := NewWithConfig(Config{Level: level, Format: format, Console: true})
	return log
}

// NewWithConfig returns a structured logger and a closer for its file output.
// With a file configured, the file is also rotated on SIGHUP. If no output is
// enabled the logger discards.
func NewWithConfig(cfg Config) (*slog.Logger, io.Closer) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if cfg.Console {
		writers = append(writers, os.Stdout)
	}

	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,    // megabytes
			MaxBackups: cfg.MaxBackups, // files
			MaxAge:     cfg.MaxAge,     // days
		}
		rotateOnHangup(file)
		writers = append(writers, file)
		closer = file
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}

	return slog.New(h), closer
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
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

// Discard returns a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rotateOnHangup(file *lumberjack.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP)

	go func() {
		for range c {
			_ = file.Rotate()
		}
	}()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
