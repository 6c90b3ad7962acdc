package observability

import (
	"testing"

	"github.com/danmuck/tdsbridge/internal/logging"
	"github.com/danmuck/tdsbridge/internal/testutil/testlog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func restoreGlobalLogger(t *testing.T) {
	t.Helper()
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestServiceLogConfigKeepsResolvedSettings(t *testing.T) {
	base := logging.Config{Level: zerolog.InfoLevel, NoColor: true, Bypass: true}

	cfg := serviceLogConfig(base, false)
	assert.Equal(t, base, cfg)

	cfg = serviceLogConfig(base, true)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level)
	assert.True(t, cfg.Bypass)
	assert.True(t, cfg.NoColor)

	trace := serviceLogConfig(logging.Config{Level: zerolog.TraceLevel}, true)
	assert.Equal(t, zerolog.TraceLevel, trace.Level)
}

func TestInitLoggerDebugLowersGlobalLevel(t *testing.T) {
	testlog.Start(t)
	restoreGlobalLogger(t)
	if logging.Current().Bypass {
		t.Skip("logging bypassed by environment")
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger := InitLogger("tdsbridge", "bridge-a", true)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	assert.True(t, logger.Debug().Enabled())
}

func TestInitLoggerWithoutDebugKeepsGlobalLevel(t *testing.T) {
	testlog.Start(t)
	restoreGlobalLogger(t)
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	InitLogger("tdsbridge", "bridge-a", false)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}
