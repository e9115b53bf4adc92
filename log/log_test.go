package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plain(opts ...Option) []Option {
	return append([]Option{WithPretty(false), WithTimeLayout("none")}, opts...)
}

func TestMakeDefaults(t *testing.T) {
	logger := Make(&bytes.Buffer{})

	assert.Equal(t, LevelInfo, logger.Level())
	assert.Equal(t, FormatText, logger.Format())
	assert.False(t, logger.caller)
	assert.True(t, logger.pretty)
}

func TestZeroLoggerDiscards(t *testing.T) {
	var logger Logger

	assert.NotPanics(t, func() {
		logger.Info("dropped")
		logger.ErrorContext(context.Background(), "dropped")
		_ = logger.With(slog.String("k", "v"))
	})
	assert.Equal(t, DefaultLevel, logger.Level())
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		log   func(Logger)
		want  bool
	}{
		{"debug below info", LevelInfo, func(l Logger) { l.Debug("m") }, false},
		{"info at info", LevelInfo, func(l Logger) { l.Info("m") }, true},
		{"trace at trace", LevelTrace, func(l Logger) { l.Trace("m") }, true},
		{"warn below error", LevelError, func(l Logger) { l.Warn("m") }, false},
		{"error at error", LevelError, func(l Logger) { l.Error("m") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(Make(&buf, plain(WithLevel(tt.level))...))

			assert.Equal(t, tt.want, buf.Len() > 0)
		})
	}
}

func TestTraceLevelName(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, plain(WithLevel(LevelTrace))...).Trace("deep")

	assert.Contains(t, buf.String(), "level=TRACE")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, plain(WithFormat(FormatJSON))...)
	logger.Info("hello", slog.String("user", "alice"), slog.Int("n", 3))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "hello", got["msg"])
	assert.Equal(t, "INFO", got["level"])
	assert.Equal(t, "alice", got["user"])
	assert.NotContains(t, got, "time")
}

func TestTimeLayout(t *testing.T) {
	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", time.RFC3339},
		{"rfc-3339-nano", time.RFC3339Nano},
		{"Kitchen", time.Kitchen},
		{"ms", time.StampMilli},
		{"2006/01/02", "2006/01/02"},
		{"none", ""},
		{"", ""},
	}

	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			format := makeFormatTimeFunc(tt.layout)

			if tt.want == "" {
				assert.Empty(t, format(ts))
			} else {
				assert.Equal(t, ts.Format(tt.want), format(ts))
			}
		})
	}
}

func TestCallerPointsAtCallSite(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, plain(WithCaller(true))...).Info("here")

	assert.Contains(t, buf.String(), "log_test.go")
}

func TestWithAddsAttributes(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, plain()...).With(slog.String("request", "r1"))
	logger.Info("first")
	logger.Info("second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	for _, line := range lines {
		assert.Contains(t, line, "request=r1")
	}
}

func TestWrapKeepsSettings(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, plain(WithLevel(LevelWarn))...)
	derived := base.Wrap(WithFormat(FormatJSON))

	assert.Equal(t, LevelWarn, derived.Level())
	assert.Equal(t, FormatJSON, derived.Format())
	assert.Equal(t, FormatText, base.Format())
}

func TestPrettyText(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithTimeLayout("none"), WithPretty(true))
	logger.With(slog.Group("req", slog.String("id", "7"))).
		Warn("slow", slog.Duration("took", time.Second), slog.Bool("ok", false))

	out := buf.String()

	// Output to a buffer carries no color sequences.
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "msg=slow")
	assert.Contains(t, out, "req.id=7")
	assert.Contains(t, out, "took=1s")
	assert.Contains(t, out, "ok=false")
}

func TestPrettyJSONGroups(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithTimeLayout("none"), WithPretty(true), WithFormat(FormatJSON))
	logger.Logger.WithGroup("render").Info("done", slog.Int("tags", 2))

	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "{\n"))
	assert.Contains(t, out, `"render.tags": 2`)
	assert.Contains(t, out, `"msg": "done"`)
}

func TestConcurrentLogging(t *testing.T) {
	var (
		buf bytes.Buffer
		mu  sync.Mutex
		wg  sync.WaitGroup
	)

	logger := Make(writerFunc(func(p []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()

		return buf.Write(p)
	}), plain()...)

	for i := range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			logger.Info("tick", slog.Int("i", i))
		}()
	}

	wg.Wait()

	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 16)
}

func TestParseLevelAndFormat(t *testing.T) {
	assert.Equal(t, LevelTrace, ParseLevel("TRACE"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, Level(slog.LevelInfo+2), ParseLevel("info+2"))
	assert.Equal(t, DefaultLevel, ParseLevel("bogus"))

	assert.Equal(t, FormatJSON, ParseFormat(" JSON "))
	assert.Equal(t, DefaultFormat, ParseFormat("xml"))

	assert.Equal(t, []string{"trace", "debug", "info", "warn", "error"},
		slices.Collect(Levels()))
	assert.Equal(t, []string{"text", "json"}, slices.Collect(Formats()))
}

func TestPackageLevelConfig(t *testing.T) {
	saved := Default()
	t.Cleanup(func() {
		defaultMu.Lock()
		defaultLog = saved
		defaultMu.Unlock()
	})

	var buf bytes.Buffer

	Config(plain(WithOutput(&buf), WithLevel(LevelDebug))...)
	Debug("package level", slog.String("k", "v"))

	assert.Contains(t, buf.String(), "package level")
	assert.Contains(t, buf.String(), "k=v")
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
