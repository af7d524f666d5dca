// Package logger writes levelled, prefixed lines with key=value fields.
// Loggers derived with WithPrefix/WithField share their parent's output and
// lock, so lines from concurrent jobs never interleave.
package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = [...]string{DEBUG: "DEBUG", INFO: "INFO", WARN: "WARN", ERROR: "ERROR"}

var levelColors = [...]string{DEBUG: "\033[36m", INFO: "\033[32m", WARN: "\033[33m", ERROR: "\033[31m"}

func (l Level) String() string {
	if l < DEBUG || l > ERROR {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a LOG_LEVEL value to a Level. Unknown values mean INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// sink is the destination shared by a logger and everything derived from it.
type sink struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
}

type field struct {
	key   string
	value any
}

// Logger is a structured logger with level support. The zero value is not
// usable; build one with New.
type Logger struct {
	sink   *sink
	level  Level
	prefix string
	fields []field // sorted by key
}

// Option configures a Logger.
type Option func(*Logger)

// WithOutput sets the output destination.
func WithOutput(w io.Writer) Option {
	return func(l *Logger) { l.sink.out = w }
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) Option {
	return func(l *Logger) { l.level = level }
}

func WithPrefix(prefix string) Option {
	return func(l *Logger) { l.prefix = prefix }
}

// WithColors enables ANSI colors on the level column.
func WithColors(enabled bool) Option {
	return func(l *Logger) { l.sink.colorize = enabled }
}

// New creates a Logger writing INFO and above to stdout.
func New(opts ...Option) *Logger {
	l := &Logger{
		sink:  &sink{out: os.Stdout, colorize: true},
		level: INFO,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var defaultLogger = New()

// SetDefault replaces the logger returned by Default and FromContext.
func SetDefault(l *Logger) {
	defaultLogger = l
}

func Default() *Logger {
	return defaultLogger
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *Logger) derive(prefix string, fields []field) *Logger {
	return &Logger{sink: l.sink, level: l.level, prefix: prefix, fields: fields}
}

// WithPrefix returns a logger tagging its lines with [prefix].
func (l *Logger) WithPrefix(prefix string) *Logger {
	return l.derive(prefix, l.fields)
}

// WithField returns a logger carrying key=value. An existing key is replaced.
func (l *Logger) WithField(key string, value any) *Logger {
	return l.WithFields(map[string]any{key: value})
}

// WithFields returns a logger carrying every entry of fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	merged := make([]field, 0, len(l.fields)+len(fields))
	for _, f := range l.fields {
		if _, replaced := fields[f.key]; !replaced {
			merged = append(merged, f)
		}
	}
	for k, v := range fields {
		merged = append(merged, field{key: k, value: v})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].key < merged[j].key })
	return l.derive(l.prefix, merged)
}

// WithError is WithField("error", err).
func (l *Logger) WithError(err error) *Logger {
	return l.WithField("error", err)
}

func (l *Logger) Debug(msg string, args ...any) { l.output(2, DEBUG, msg, args) }

func (l *Logger) Info(msg string, args ...any) { l.output(2, INFO, msg, args) }

func (l *Logger) Warn(msg string, args ...any) { l.output(2, WARN, msg, args) }

func (l *Logger) Error(msg string, args ...any) { l.output(2, ERROR, msg, args) }

// Package-level helpers on the default logger.

func Debug(msg string, args ...any) { defaultLogger.output(2, DEBUG, msg, args) }
func Info(msg string, args ...any)  { defaultLogger.output(2, INFO, msg, args) }
func Warn(msg string, args ...any)  { defaultLogger.output(2, WARN, msg, args) }
func Error(msg string, args ...any) { defaultLogger.output(2, ERROR, msg, args) }

// output formats one line. depth is the number of frames between the caller
// of the public method and runtime.Caller.
func (l *Logger) output(depth int, level Level, msg string, args []any) {
	if !l.Enabled(level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	var sb strings.Builder
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05.000"))
	sb.WriteByte(' ')
	if l.sink.colorize {
		fmt.Fprintf(&sb, "%s%-5s\033[0m", levelColors[level], level)
	} else {
		fmt.Fprintf(&sb, "%-5s", level)
	}
	sb.WriteByte(' ')
	if l.prefix != "" {
		sb.WriteString("[" + l.prefix + "] ")
	}
	if _, file, line, ok := runtime.Caller(depth); ok {
		fmt.Fprintf(&sb, "[%s:%d] ", file[strings.LastIndexByte(file, '/')+1:], line)
	}
	sb.WriteString(msg)
	for _, f := range l.fields {
		sb.WriteByte(' ')
		sb.WriteString(f.key)
		sb.WriteByte('=')
		sb.WriteString(formatValue(f.value))
	}
	sb.WriteByte('\n')

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	_, _ = io.WriteString(l.sink.out, sb.String())
}

// formatValue quotes values that would otherwise break key=value parsing.
func formatValue(v any) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
