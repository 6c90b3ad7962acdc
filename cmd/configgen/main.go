package main

import (
	"flag"
	"log"

	"github.com/danmuck/tdsbridge/internal/config"
)

const defaultPath = "cmd/tdsbridge/config.toml"

func main() {
	kind := flag.String("kind", "bridge", "config kind: bridge|bridge-dev")
	output := flag.String("output", defaultPath, "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", defaultPath, "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		cfg, err := config.LoadBridgeConfig(*input)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated config at %s (name=%s origin_pattern=%s)", *input, cfg.Name, cfg.OriginPattern)
		return
	}

	if err := config.WriteTemplate(*output, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, *output)
}
