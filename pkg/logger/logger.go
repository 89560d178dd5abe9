package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fredcat/pkg/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Fields is a set of structured key/value pairs attached to a log entry.
type Fields map[string]interface{}

// Logger is the logging surface used across fredcat.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)

	WithField(key string, value interface{}) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger

	DebugWithFields(msg string, fields Fields)
	InfoWithFields(msg string, fields Fields)
	WarnWithFields(msg string, fields Fields)
	ErrorWithFields(msg string, fields Fields)

	// GetZerolog exposes the underlying logger
	GetZerolog() *zerolog.Logger
}

type zerologLogger struct {
	logger *zerolog.Logger
	fields Fields
}

// levelLabels are the four-letter tags shown on the console, with the ANSI
// color used when color is on.
var levelLabels = map[string]struct{ tag, color string }{
	"debug": {"DEBG", "37"},
	"info":  {"INFO", "32"},
	"warn":  {"WARN", "33"},
	"error": {"ERRO", "31"},
	"fatal": {"FATL", "35"},
}

func consoleWriter(out io.Writer, color bool) zerolog.ConsoleWriter {
	w := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
		NoColor:    !color,
		FormatMessage: func(i interface{}) string {
			if i == nil {
				return ""
			}
			return fmt.Sprintf("| %s", i)
		},
	}
	w.FormatLevel = func(i interface{}) string {
		level := strings.ToLower(fmt.Sprintf("%v", i))
		label, ok := levelLabels[level]
		if !ok {
			return strings.ToUpper(level)
		}
		if !color {
			return label.tag
		}
		return fmt.Sprintf("\033[%sm%s\033[0m", label.color, label.tag)
	}
	if color {
		w.FormatFieldName = func(i interface{}) string {
			return fmt.Sprintf("\033[36m%s\033[0m:", i)
		}
	}
	return w
}

// New creates a Logger writing to stdout, and additionally to cfg.File as
// JSON lines when a file is configured.
func New(cfg *config.LoggingConfig) (Logger, error) {
	return newLogger(cfg, os.Stdout, true)
}

// NewWithWriter creates an uncolored console Logger writing to out.
func NewWithWriter(cfg *config.LoggingConfig, out io.Writer) (Logger, error) {
	return newLogger(cfg, out, false)
}

func newLogger(cfg *config.LoggingConfig, out io.Writer, color bool) (Logger, error) {
	level, err := parseLogLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = consoleWriter(out, color)
	if cfg.File != "" {
		file, err := openLogFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("failed to setup file output: %w", err)
		}
		output = zerolog.MultiLevelWriter(output, file)
	}

	zlog := zerolog.New(output).Level(level).With().
		Timestamp().
		Str("app", "fredcat").
		Logger()

	return &zerologLogger{logger: &zlog, fields: Fields{}}, nil
}

func openLogFile(path string) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// parseLogLevel converts string log level to zerolog.Level
func parseLogLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled":
		return zerolog.Disabled, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level: %s", level)
	}
}

func (l *zerologLogger) Debug(msg string) { l.emit(l.logger.Debug(), msg, nil) }
func (l *zerologLogger) Info(msg string)  { l.emit(l.logger.Info(), msg, nil) }
func (l *zerologLogger) Warn(msg string)  { l.emit(l.logger.Warn(), msg, nil) }
func (l *zerologLogger) Error(msg string) { l.emit(l.logger.Error(), msg, nil) }

func (l *zerologLogger) DebugWithFields(msg string, fields Fields) {
	l.emit(l.logger.Debug(), msg, fields)
}

func (l *zerologLogger) InfoWithFields(msg string, fields Fields) {
	l.emit(l.logger.Info(), msg, fields)
}

func (l *zerologLogger) WarnWithFields(msg string, fields Fields) {
	l.emit(l.logger.Warn(), msg, fields)
}

func (l *zerologLogger) ErrorWithFields(msg string, fields Fields) {
	l.emit(l.logger.Error(), msg, fields)
}

// WithField returns a child logger carrying one more field.
func (l *zerologLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(Fields{key: value})
}

// WithFields returns a child logger carrying the given fields in addition
// to the parent's.
func (l *zerologLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &zerologLogger{logger: l.logger, fields: merged}
}

func (l *zerologLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *zerologLogger) GetZerolog() *zerolog.Logger {
	return l.logger
}

func (l *zerologLogger) emit(event *zerolog.Event, msg string, fields Fields) {
	if event == nil {
		return
	}
	for key, value := range l.fields {
		event = addFieldToEvent(event, key, value)
	}
	for key, value := range fields {
		event = addFieldToEvent(event, key, value)
	}
	event.Msg(msg)
}

// addFieldToEvent adds a single field to a zerolog event with type checking
func addFieldToEvent(event *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return event.Str(key, v)
	case int:
		return event.Int(key, v)
	case int64:
		return event.Int64(key, v)
	case float64:
		return event.Float64(key, v)
	case bool:
		return event.Bool(key, v)
	case time.Time:
		return event.Time(key, v)
	case time.Duration:
		return event.Dur(key, v)
	case error:
		return event.AnErr(key, v)
	case []string:
		return event.Strs(key, v)
	default:
		return event.Interface(key, v)
	}
}

var globalLogger Logger

// Initialize sets up the global logger
func Initialize(cfg *config.LoggingConfig) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	globalLogger = l
	log.Logger = *l.GetZerolog()
	return nil
}

// GetLogger returns the global logger, creating an info-level one on first
// use if Initialize was never called.
func GetLogger() Logger {
	if globalLogger == nil {
		globalLogger, _ = New(&config.LoggingConfig{Level: "info"})
	}
	return globalLogger
}
