// Package logging configures the zerolog logger used by dfm-setup.
//
// Console output always goes to stderr so it never interleaves with the
// step report printed on stdout. When a log file is configured, the console
// only receives warnings and errors while the file (rotated by lumberjack)
// receives everything at the configured level.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// FormatConsole renders human-readable lines.
	FormatConsole = "console"
	// FormatJSON renders one JSON object per line.
	FormatJSON = "json"

	// EnvLogLevel overrides the configured level when set.
	EnvLogLevel = "DFM_SETUP_LOG_LEVEL"

	// logFileRel is the log file location relative to XDG_STATE_HOME.
	logFileRel = "dfm-setup/setup.log"

	logDirPerm     = 0o750
	logMaxSizeMB   = 5
	logMaxBackups  = 3
	logMaxAgeDays  = 30
	fieldComponent = "component"
	fieldSession   = "session_id"
)

// Config describes how the logger should be built.
type Config struct {
	Level  string
	Format string
	File   string
}

// LogPathResult is the outcome of building a logger.
type LogPathResult struct {
	Logger         zerolog.Logger
	FilePath       string
	UsingFile      bool
	FallbackUsed   bool
	FallbackReason string

	closer io.Closer
}

// Close releases the log file handle, if one was opened.
func (r *LogPathResult) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// ParseLevel converts a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// NewLoggerWithPath builds a logger from cfg. console receives console
// output (normally os.Stderr). If the log file directory cannot be created
// the logger falls back to console-only output and reports why.
func NewLoggerWithPath(cfg Config, console io.Writer) LogPathResult {
	lvl := ParseLevel(cfg.Level)

	var consoleOut io.Writer = console
	if cfg.Format != FormatJSON {
		consoleOut = zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}
	}

	result := LogPathResult{}
	var writers []io.Writer

	if cfg.File == "" {
		writers = append(writers, consoleOut)
	} else if err := os.MkdirAll(filepath.Dir(cfg.File), logDirPerm); err != nil {
		result.FallbackUsed = true
		result.FallbackReason = err.Error()
		writers = append(writers, consoleOut)
	} else {
		fileOut := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
		}
		result.closer = fileOut
		result.UsingFile = true
		result.FilePath = cfg.File
		writers = append(writers,
			&zerolog.FilteredLevelWriter{
				Writer: zerolog.LevelWriterAdapter{Writer: consoleOut},
				Level:  zerolog.WarnLevel,
			},
			fileOut,
		)
	}

	result.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return result
}

// DefaultLogFile returns $XDG_STATE_HOME/dfm-setup/setup.log, creating the
// parent directory if needed.
func DefaultLogFile() (string, error) {
	path, err := xdg.StateFile(logFileRel)
	if err != nil {
		return "", fmt.Errorf("resolving log file path: %w", err)
	}
	return path, nil
}

// ComponentLogger returns a child logger tagged with the given component.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str(fieldComponent, component).Logger()
}

// FromContext returns the logger stored in ctx. When none is stored it
// returns zerolog's disabled logger so callers never need a nil check.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// NewSessionID returns a sortable identifier for one installer run.
func NewSessionID() string {
	return ulid.Make().String()
}

// WithSession attaches a session-tagged logger to ctx.
func WithSession(ctx context.Context, logger zerolog.Logger, sessionID string) context.Context {
	tagged := logger.With().Str(fieldSession, sessionID).Logger()
	return tagged.WithContext(ctx)
}

// PrintLogPathMessage tells the user where the detailed log is written.
func PrintLogPathMessage(w io.Writer, path string) {
	_, _ = fmt.Fprintf(w, "Detailed log: %s\n", path)
}

// PrintFallbackWarning tells the user the log file could not be used.
func PrintFallbackWarning(w io.Writer, reason string) {
	_, _ = fmt.Fprintf(w, "Warning: log file unavailable (%s), logging to stderr\n", reason)
}
