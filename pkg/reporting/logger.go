package reporting

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level  LogLevel
	Format LogFormat
	Output io.Writer
}

// Logger provides structured logging
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates a new structured logger
func NewLogger(cfg LoggerConfig) *Logger {
	// Set default output if not specified
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	// Configure output format
	var output io.Writer = cfg.Output
	if cfg.Format == LogFormatText {
		output = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		}
	}

	// Create logger
	zlog := zerolog.New(output).With().Timestamp().Logger()

	// Set log level
	switch cfg.Level {
	case LogLevelDebug:
		zlog = zlog.Level(zerolog.DebugLevel)
	case LogLevelInfo:
		zlog = zlog.Level(zerolog.InfoLevel)
	case LogLevelWarn:
		zlog = zlog.Level(zerolog.WarnLevel)
	case LogLevelError:
		zlog = zlog.Level(zerolog.ErrorLevel)
	default:
		zlog = zlog.Level(zerolog.InfoLevel)
	}

	return &Logger{logger: zlog}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...interface{}) {
	event := l.logger.Debug()
	l.addFields(event, fields...)
	event.Msg(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...interface{}) {
	event := l.logger.Info()
	l.addFields(event, fields...)
	event.Msg(msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...interface{}) {
	event := l.logger.Warn()
	l.addFields(event, fields...)
	event.Msg(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...interface{}) {
	event := l.logger.Error()
	l.addFields(event, fields...)
	event.Msg(msg)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, fields ...interface{}) {
	event := l.logger.Fatal()
	l.addFields(event, fields...)
	event.Msg(msg)
}

// WithField creates a child logger with an additional field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		logger: l.logger.With().Interface(key, value).Logger(),
	}
}

// WithFields creates a child logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{
		logger: ctx.Logger(),
	}
}

// addFields adds key-value pairs to a log event
func (l *Logger) addFields(event *zerolog.Event, fields ...interface{}) {
	if len(fields)%2 != 0 {
		event.Str("error", "odd number of fields")
		return
	}

	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			event.Str("error", fmt.Sprintf("field key at index %d is not a string", i))
			continue
		}

		value := fields[i+1]
		event.Interface(key, value)
	}
}

// PhaseSeverity maps a transform pipeline phase name to the level its
// transition should be logged at, so a phase's own name decides the level
// instead of every call site picking one by hand. Phases absent from this
// map log at debug.
var PhaseSeverity = map[string]LogLevel{
	"FAILED": LogLevelError,
	"DONE":   LogLevelInfo,
}

// Stage logs one pipeline phase transition at the level PhaseSeverity
// assigns that phase name, always attaching "phase" as a field alongside
// whatever the caller supplies. A FAILED phase is never accidentally logged
// at debug just because the call site forgot to upgrade it.
func (l *Logger) Stage(phase string, fields ...interface{}) {
	all := make([]interface{}, 0, len(fields)+2)
	all = append(all, "phase", phase)
	all = append(all, fields...)

	switch PhaseSeverity[phase] {
	case LogLevelError:
		l.Error("pipeline phase", all...)
	case LogLevelInfo:
		l.Info("pipeline phase", all...)
	default:
		l.Debug("pipeline phase", all...)
	}
}

// WithSource returns a child logger tagging every subsequent call with the
// file path being transformed, so one file's log lines can be grepped out
// of a worker pool's interleaved output.
func (l *Logger) WithSource(sourcePath string) *Logger {
	return l.WithField("source", sourcePath)
}

// Summary logs the outcome of one finished transform run: construct usage
// counts flattened into fields rather than a single opaque map value, so a
// log aggregator can filter or alert on "ish_value > N" without parsing
// nested JSON. Zero-count constructs are omitted.
func (l *Logger) Summary(sourcePath string, constructUsage map[string]int, helperCount int) {
	fields := make([]interface{}, 0, len(constructUsage)*2+4)
	fields = append(fields, "source", sourcePath, "helpers", helperCount)
	for construct, count := range constructUsage {
		if count == 0 {
			continue
		}
		fields = append(fields, "construct."+construct, count)
	}
	l.Info("transform summary", fields...)
}
