package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "bridge":
		return bridgeTemplate, nil
	case "bridge-dev":
		return bridgeDevTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const bridgeTemplate = `name = "tdsbridge"
addr = ":9300"
origin_pattern = "https://*.example.com"
cors_origins = ["https://console.example.com"]
debug = false
tickets = []
ws_path = "/ws"
`

const bridgeDevTemplate = `name = "tdsbridge-dev"
addr = ":9300"
origin_pattern = "http://localhost:*"
cors_origins = ["http://localhost:3000"]
debug = true
tickets = ["dev-ticket"]
ws_path = "/ws"
`
