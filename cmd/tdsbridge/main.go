package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danmuck/tdsbridge/internal/bridge"
	"github.com/danmuck/tdsbridge/internal/logging"
	"github.com/danmuck/tdsbridge/internal/observability"
)

func main() {
	path := flag.String("config", "cmd/tdsbridge/config.toml", "path to tdsbridge config")
	flag.Parse()

	logging.ConfigureRuntime()
	cfg, err := loadServiceConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tdsbridge: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("tdsbridge", cfg.Name, cfg.Debug)

	svc, err := bridge.NewService(cfg, bridge.Handlers{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "tdsbridge: %v\n", err)
		os.Exit(1)
	}
	if err := svc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tdsbridge: %v\n", err)
		os.Exit(1)
	}
}
