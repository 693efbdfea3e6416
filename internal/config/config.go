package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the current directory when no
// explicit config path is given.
const DefaultFileName = "debstage.yml"

// Config holds the repository settings for index assembly.
type Config struct {
	Suite          string `yaml:"suite"`
	Component      string `yaml:"component"`
	Origin         string `yaml:"origin"`
	Label          string `yaml:"label"`
	Workers        int    `yaml:"workers"`
	SigningKeyFile string `yaml:"signing_key_file"`
}

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "suite": {"type": "string", "minLength": 1},
    "component": {"type": "string", "minLength": 1},
    "origin": {"type": "string"},
    "label": {"type": "string"},
    "workers": {"type": "integer", "minimum": 1, "maximum": 64},
    "signing_key_file": {"type": "string"}
  }
}`

var schema = jsonschema.MustCompileString(DefaultFileName, schemaJSON)

// Default returns the settings used when no config file is present.
func Default() Config {
	return Config{
		Suite:     "stable",
		Component: "main",
		Workers:   4,
	}
}

// Load reads and validates a config file. A missing file is not an
// error and yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if doc != nil {
		if err := schema.Validate(doc); err != nil {
			return cfg, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return applyDefaults(cfg), nil
}

func applyDefaults(cfg Config) Config {
	def := Default()
	if strings.TrimSpace(cfg.Suite) == "" {
		cfg.Suite = def.Suite
	}
	if strings.TrimSpace(cfg.Component) == "" {
		cfg.Component = def.Component
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	return cfg
}
