package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs a completed FRED API call on l.
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	fields := Fields{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": float64(duration.Microseconds()) / 1000,
	}

	switch {
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		l.WarnWithFields("HTTP request client error", fields)
	default:
		l.DebugWithFields("HTTP request completed", fields)
	}
}

// LogRateLimitWait logs time spent waiting on the rate limiter.
// Waits under a millisecond are not worth a line.
func LogRateLimitWait(l Logger, categoryID string, waited time.Duration) {
	if waited < time.Millisecond {
		return
	}
	l.DebugWithFields("Rate limiter delayed request", Fields{
		"category_id": categoryID,
		"waited":      waited,
	})
}

// LogLevelSummary logs the outcome of one traversal level.
func LogLevelSummary(l Logger, level int, source string, rows, queried, skipped int) {
	l.InfoWithFields("Level complete", Fields{
		"depth":   level,
		"source":  source,
		"rows":    rows,
		"queried": queried,
		"skipped": skipped,
	})
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                  {}
func (n *nopLogger) Info(msg string)                                   {}
func (n *nopLogger) Warn(msg string)                                   {}
func (n *nopLogger) Error(msg string)                                  {}
func (n *nopLogger) WithField(key string, value interface{}) Logger    { return n }
func (n *nopLogger) WithFields(fields Fields) Logger                   { return n }
func (n *nopLogger) WithError(err error) Logger                        { return n }
func (n *nopLogger) DebugWithFields(msg string, fields Fields)         {}
func (n *nopLogger) InfoWithFields(msg string, fields Fields)          {}
func (n *nopLogger) WarnWithFields(msg string, fields Fields)          {}
func (n *nopLogger) ErrorWithFields(msg string, fields Fields)         {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                       { z := zerolog.Nop(); return &z }
