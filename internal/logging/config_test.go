package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		" DEBUG ":  zerolog.DebugLevel,
		"info":     zerolog.InfoLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"off":      zerolog.Disabled,
		"inactive": zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := parseLevel(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := parseLevel("")
	assert.False(t, ok)
	_, ok = parseLevel("loud")
	assert.False(t, ok)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "1")
	t.Setenv(EnvLogBypass, "nope")

	cfg := defaultConfig(ProfileRuntime)
	applyEnvOverrides(&cfg)

	assert.Equal(t, zerolog.WarnLevel, cfg.Level)
	assert.False(t, cfg.Timestamp)
	assert.True(t, cfg.NoColor)
	assert.False(t, cfg.Bypass)
}

func TestNewLoggerHonorsLevelAndBypass(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, Config{Level: zerolog.WarnLevel, NoColor: true})
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	nop := NewLogger(&buf, Config{Level: zerolog.DebugLevel, Bypass: true})
	nop.Error().Msg("dropped")
	assert.Empty(t, buf.String())
}

func TestResolveKeepsBypassAndTimestamp(t *testing.T) {
	t.Setenv(EnvLogBypass, "true")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogLevel, "")

	cfg := resolve(ProfileRuntime)
	assert.True(t, cfg.Bypass)
	assert.False(t, cfg.Timestamp)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level)
}

func TestCurrentMatchesConfiguredLogger(t *testing.T) {
	ConfigureTests()
	cfg := Current()
	assert.Equal(t, zerolog.GlobalLevel(), cfg.Level)
}
