package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = newLogger(zerolog.ConsoleWriter{Out: os.Stderr}, zerolog.InfoLevel)
	closer io.Closer
)

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Str("app", "semantle").Logger()
}

// ParseLevel maps the configured level name onto zerolog levels. Unknown
// names fall back to info.
func ParseLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Init configures level and outputs. With console set, lines also go to
// stderr; the TUI passes false so nothing is drawn over the screen.
func Init(logfilePath string, levelStr string, console bool) error {
	var writers []io.Writer
	if console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	var f *os.File
	if logfilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logfilePath), 0o755); err != nil {
			return err
		}
		var err error
		f, err = os.OpenFile(logfilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = zerolog.MultiLevelWriter(writers...)
	}

	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		closer.Close()
		closer = nil
	}
	if f != nil {
		closer = f
	}
	logger = newLogger(out, ParseLevel(levelStr))
	return nil
}

// SetOutput replaces the writer, keeping the current level.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w, logger.GetLevel())
}

func SetLevel(levelStr string) {
	mu.Lock()
	defer mu.Unlock()
	logger = logger.Level(ParseLevel(levelStr))
}

// L returns the current logger for callers that want structured fields.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

func Debug(msg string, args ...any) {
	L().Debug().Msgf(msg, args...)
}

func Info(msg string, args ...any) {
	L().Info().Msgf(msg, args...)
}

func Warn(msg string, args ...any) {
	L().Warn().Msgf(msg, args...)
}

func Error(msg string, args ...any) {
	L().Error().Msgf(msg, args...)
}
