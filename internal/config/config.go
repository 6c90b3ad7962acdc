package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/tdsbridge/internal/bridge"
	"github.com/danmuck/tdsbridge/internal/protocol/origin"
	"github.com/pelletier/go-toml/v2"
)

type BridgeConfig struct {
	Name          string   `toml:"name"`
	Addr          string   `toml:"addr"`
	OriginPattern string   `toml:"origin_pattern"`
	CorsOrigins   []string `toml:"cors_origins"`
	Debug         bool     `toml:"debug"`
	Tickets       []string `toml:"tickets"`
	WSPath        string   `toml:"ws_path"`
}

// LoadBridgeConfig reads path over the bridge service defaults. Keys
// absent from the file keep their default; unknown keys are rejected.
func LoadBridgeConfig(path string) (BridgeConfig, error) {
	cfg := FromServiceConfig(bridge.DefaultServiceConfig())
	if err := loadToml(path, &cfg); err != nil {
		return BridgeConfig{}, err
	}
	cfg = FromServiceConfig(ServiceConfig(cfg).Normalize())
	if err := ValidateBridgeConfig(cfg); err != nil {
		return BridgeConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	defer f.Close()
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateBridgeConfig(cfg BridgeConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("bridge config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("bridge config missing addr")
	}
	if err := ValidateOriginPattern(cfg.OriginPattern); err != nil {
		return fmt.Errorf("origin_pattern invalid: %w", err)
	}
	for i, o := range cfg.CorsOrigins {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("cors_origins[%d] is blank", i)
		}
	}
	if !strings.HasPrefix(strings.TrimSpace(cfg.WSPath), "/") {
		return fmt.Errorf("ws_path must start with /")
	}
	return nil
}

// ValidateOriginPattern rejects patterns that cannot match a browser
// origin. Any pattern compiles; this only catches configuration mistakes.
func ValidateOriginPattern(pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return fmt.Errorf("pattern is required")
	}
	if pattern == "*" {
		return nil
	}
	if !strings.Contains(pattern, "://") {
		return fmt.Errorf("pattern %q has no scheme", pattern)
	}
	if strings.HasSuffix(pattern, "/") {
		return fmt.Errorf("pattern %q must not end with /", pattern)
	}
	if !origin.HasWildcard(pattern) {
		return nil
	}
	// A wildcard pattern should at least accept its own literal text
	// with each wildcard filled in.
	sample := strings.ReplaceAll(pattern, "*", "x")
	if !origin.Match(sample, pattern) {
		return fmt.Errorf("pattern %q does not match %q", pattern, sample)
	}
	return nil
}
