package config

import "github.com/danmuck/tdsbridge/internal/bridge"

func ServiceConfig(cfg BridgeConfig) bridge.ServiceConfig {
	return bridge.ServiceConfig{
		Name:          cfg.Name,
		ListenAddr:    cfg.Addr,
		OriginPattern: cfg.OriginPattern,
		CorsOrigins:   append([]string(nil), cfg.CorsOrigins...),
		Debug:         cfg.Debug,
		Tickets:       append([]string(nil), cfg.Tickets...),
		WSPath:        cfg.WSPath,
	}
}

func FromServiceConfig(cfg bridge.ServiceConfig) BridgeConfig {
	return BridgeConfig{
		Name:          cfg.Name,
		Addr:          cfg.ListenAddr,
		OriginPattern: cfg.OriginPattern,
		CorsOrigins:   append([]string(nil), cfg.CorsOrigins...),
		Debug:         cfg.Debug,
		Tickets:       append([]string(nil), cfg.Tickets...),
		WSPath:        cfg.WSPath,
	}
}
