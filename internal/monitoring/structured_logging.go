package monitoring

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelError {
		return "level(" + strconv.Itoa(int(l)) + ")"
	}
	return levelNames[l]
}

// Level implements slog.Leveler.
func (l LogLevel) Level() slog.Level {
	return slog.Level(4 * (int(l) - int(LevelInfo)))
}

// ParseLogLevel is case insensitive. An empty string means info.
func ParseLogLevel(s string) (LogLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return LevelInfo, nil
	case "warning":
		return LevelWarn, nil
	}
	for i, name := range levelNames {
		if s == name {
			return LogLevel(i), nil
		}
	}
	return LevelInfo, fmt.Errorf("invalid log level '%s': must be one of [%s]", s, strings.Join(levelNames[:], ", "))
}

type LogFormat int

const (
	FormatJSON LogFormat = iota
	FormatText
	FormatConsole
)

var formatNames = [...]string{"json", "text", "console"}

// ParseLogFormat is case insensitive. An empty string means json.
func ParseLogFormat(s string) (LogFormat, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatJSON, nil
	}
	for i, name := range formatNames {
		if s == name {
			return LogFormat(i), nil
		}
	}
	return FormatJSON, fmt.Errorf("invalid log format '%s': must be one of [%s]", s, strings.Join(formatNames[:], ", "))
}

// ContextKey is the type of the context values copied onto log records.
type ContextKey string

const (
	TraceIDKey   ContextKey = "trace_id"
	RequestIDKey ContextKey = "request_id"
)

type LoggerConfig struct {
	Level     LogLevel
	Format    LogFormat
	Output    io.Writer // defaults to os.Stderr
	Component string
	Fields    map[string]any
}

// StructuredLogger is a slog.Logger tagged with the service and component.
type StructuredLogger struct {
	*slog.Logger
}

func NewStructuredLogger(config LoggerConfig) *StructuredLogger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: config.Level}
	switch config.Format {
	case FormatText:
		handler = slog.NewTextHandler(out, opts)
	case FormatConsole:
		handler = newConsoleHandler(out, config.Level)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	args := []any{"service", "serdex"}
	if config.Component != "" {
		args = append(args, "component", config.Component)
	}
	logger := &StructuredLogger{slog.New(handler).With(args...)}
	return logger.WithFields(config.Fields)
}

// NewLoggerFromEnv configures a logger from SERDEX_LOG_LEVEL and
// SERDEX_LOG_FORMAT. Unset or invalid values fall back to warn and json.
func NewLoggerFromEnv(component string) *StructuredLogger {
	level, err := ParseLogLevel(os.Getenv("SERDEX_LOG_LEVEL"))
	if err != nil || os.Getenv("SERDEX_LOG_LEVEL") == "" {
		level = LevelWarn
	}
	format, _ := ParseLogFormat(os.Getenv("SERDEX_LOG_FORMAT"))
	return NewStructuredLogger(LoggerConfig{Level: level, Format: format, Component: component})
}

func (l *StructuredLogger) WithFields(fields map[string]any) *StructuredLogger {
	if len(fields) == 0 {
		return l
	}
	return &StructuredLogger{l.Logger.With(attrs(fields)...)}
}

// WithContext adds the trace and request ids stored in ctx, if any.
func (l *StructuredLogger) WithContext(ctx context.Context) *StructuredLogger {
	if ctx == nil {
		return l
	}
	var args []any
	for _, key := range [...]ContextKey{TraceIDKey, RequestIDKey} {
		if v := ctx.Value(key); v != nil {
			args = append(args, string(key), v)
		}
	}
	if len(args) == 0 {
		return l
	}
	return &StructuredLogger{l.Logger.With(args...)}
}

func (l *StructuredLogger) Slog() *slog.Logger {
	return l.Logger
}

// consoleHandler writes one colored line per record:
//
//	15:04:05.000 INFO message key=value
type consoleHandler struct {
	mu     *sync.Mutex
	out    io.Writer
	level  slog.Leveler
	prefix string
	attrs  []byte
}

func newConsoleHandler(out io.Writer, level slog.Leveler) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, out: out, level: level}
}

var levelColors = map[slog.Level]string{
	slog.LevelDebug: "\033[36mDEBUG\033[0m",
	slog.LevelInfo:  "\033[32mINFO\033[0m",
	slog.LevelWarn:  "\033[33mWARN\033[0m",
	slog.LevelError: "\033[31mERROR\033[0m",
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	level, ok := levelColors[r.Level]
	if !ok {
		level = r.Level.String()
	}

	buf := make([]byte, 0, 128)
	buf = r.Time.AppendFormat(buf, "15:04:05.000")
	buf = append(buf, ' ')
	buf = append(buf, level...)
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)
	buf = append(buf, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		buf = appendAttr(buf, h.prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf)
	return err
}

func (h *consoleHandler) WithAttrs(as []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]byte(nil), h.attrs...)
	for _, a := range as {
		next.attrs = appendAttr(next.attrs, h.prefix, a)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = appendAttr(buf, prefix, ga)
		}
		return buf
	}
	buf = append(buf, ' ')
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	s := a.Value.String()
	if strings.ContainsAny(s, " \t\n\"=") {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}
