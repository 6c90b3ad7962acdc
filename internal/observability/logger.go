package observability

import (
	"os"

	"github.com/danmuck/tdsbridge/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger installs the service logger tagged with app and node, built
// from the resolved logging configuration so env overrides still apply.
// The debug flag lowers both the logger and global level to debug.
func InitLogger(app, node string, debug bool) zerolog.Logger {
	cfg := serviceLogConfig(logging.Current(), debug)
	logger := logging.NewLogger(os.Stdout, cfg).With().Str("app", app).Str("node", node).Logger()
	if debug && !cfg.Bypass && zerolog.GlobalLevel() > cfg.Level {
		zerolog.SetGlobalLevel(cfg.Level)
	}
	log.Logger = logger
	return logger
}

func serviceLogConfig(cfg logging.Config, debug bool) logging.Config {
	if debug && cfg.Level > zerolog.DebugLevel {
		cfg.Level = zerolog.DebugLevel
	}
	return cfg
}
