package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fredcat/pkg/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"info level", &config.LoggingConfig{Level: "info"}, false},
		{"debug level", &config.LoggingConfig{Level: "debug"}, false},
		{"empty level defaults to info", &config.LoggingConfig{}, false},
		{"invalid level", &config.LoggingConfig{Level: "chatty"}, true},
		{"with file", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "fredcat.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			got, err := parseLogLevel(tt.level)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestWriterOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(&config.LoggingConfig{Level: "info"}, &buf)
	require.NoError(t, err)

	l.WithField("depth", 3).InfoWithFields("Level complete", Fields{"rows": 12})
	l.Debug("hidden at info")
	l.WarnWithFields("Category skipped", Fields{"depth": 1, "category_id": "7"})

	out := buf.String()
	assert.Contains(t, out, "INFO | Level complete")
	assert.Contains(t, out, "depth=3")
	assert.Contains(t, out, "WARN | Category skipped")
	assert.Contains(t, out, "depth=1")
	assert.Contains(t, out, "rows=12")
	assert.NotContains(t, out, "hidden at info")
}

func TestChildLoggersDoNotShareFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(&config.LoggingConfig{Level: "debug"}, &buf)
	require.NoError(t, err)

	parent := l.WithField("component", "client")
	_ = parent.WithField("category_id", "32991")
	parent.Info("parent only")

	assert.Contains(t, buf.String(), "component=client")
	assert.NotContains(t, buf.String(), "category_id")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fredcat.log")
	l, err := New(&config.LoggingConfig{Level: "info", File: path})
	require.NoError(t, err)

	l.WithError(errors.New("boom")).ErrorWithFields("fetch failed", Fields{"depth": 2})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"message":"fetch failed"`)
	assert.Contains(t, line, `"error":"boom"`)
	assert.Contains(t, line, `"app":"fredcat"`)
	assert.Contains(t, line, `"depth":2`)
	assert.Equal(t, 1, strings.Count(line, `"level":`))
	assert.Contains(t, line, `"level":"error"`)
}

func TestHelpers(t *testing.T) {
	tl := NewTestLogger()

	LogRequest(tl, "GET", "http://x/fred/category/children", 200, 15*time.Millisecond)
	LogRequest(tl, "GET", "http://x/fred/category/children", 400, time.Millisecond)
	LogRequest(tl, "GET", "http://x/fred/category/children", 503, time.Millisecond)
	LogRateLimitWait(tl, "0", 0)
	LogRateLimitWait(tl, "1", 2*time.Second)
	LogLevelSummary(tl, 1, "fetched", 20, 3, 1)

	assert.Len(t, tl.GetMessagesByLevel("DEBUG"), 2)
	assert.Len(t, tl.GetMessagesByLevel("WARN"), 1)
	assert.Len(t, tl.GetMessagesByLevel("ERROR"), 1)
	assert.True(t, tl.HasMessage("Rate limiter delayed request"))

	infos := tl.GetMessagesByLevel("INFO")
	require.Len(t, infos, 1)
	assert.Equal(t, 20, infos[0].Fields["rows"])
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger()
	child := tl.WithField("depth", 2).WithError(errors.New("bad"))

	child.WarnWithFields("skipped", Fields{"category_id": "7"})
	tl.Info("plain")

	msgs := tl.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "WARN", msgs[0].Level)
	assert.Equal(t, Fields{"depth": 2, "category_id": "7"}, msgs[0].Fields)
	assert.EqualError(t, msgs[0].Error, "bad")
	assert.Nil(t, msgs[1].Fields)
	assert.False(t, tl.HasError())
	assert.Contains(t, tl.String(), "[WARN] skipped")

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.WithField("a", 1).WithError(errors.New("x")).ErrorWithFields("ignored", Fields{"b": 2})
		l.GetZerolog().Info().Msg("ignored")
	})
}
