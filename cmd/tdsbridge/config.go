package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/tdsbridge/internal/bridge"
	"github.com/danmuck/tdsbridge/internal/config"
)

// tdsbridge config.toml key mapping to bridge runtime settings.
type fileConfig struct {
	Name          string   `toml:"name"`
	Addr          string   `toml:"addr"`
	OriginPattern string   `toml:"origin_pattern"`
	CorsOrigins   []string `toml:"cors_origins"`
	Debug         bool     `toml:"debug"`
	Tickets       []string `toml:"tickets"`
	WSPath        string   `toml:"ws_path"`
}

// tdsbridge loader for TOML config with default overlay.
func loadServiceConfig(path string) (bridge.ServiceConfig, error) {
	cfg := bridge.DefaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return bridge.ServiceConfig{}, fmt.Errorf("load tdsbridge config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return bridge.ServiceConfig{}, fmt.Errorf("load tdsbridge config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("origin_pattern") {
		cfg.OriginPattern = strings.TrimSpace(raw.OriginPattern)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = raw.CorsOrigins
	}
	if meta.IsDefined("debug") {
		cfg.Debug = raw.Debug
	}
	if meta.IsDefined("tickets") {
		cfg.Tickets = raw.Tickets
	}
	if meta.IsDefined("ws_path") {
		cfg.WSPath = strings.TrimSpace(raw.WSPath)
	}

	cfg = cfg.Normalize()
	if err := config.ValidateBridgeConfig(config.FromServiceConfig(cfg)); err != nil {
		return bridge.ServiceConfig{}, fmt.Errorf("load tdsbridge config: %w", err)
	}
	return cfg, nil
}
