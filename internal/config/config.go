package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Backup policies for pre-patch backup files.
const (
	PolicySkipIfExists    = "skip-if-exists"
	PolicyAlwaysOverwrite = "always-overwrite"
)

// Backup controls how the original file is preserved before patching.
type Backup struct {
	Suffix string `yaml:"suffix"`
	Policy string `yaml:"policy"`
}

// Payload holds the injected-content parameters. The shape of the injection
// (two states plus a per-state guard) is fixed; everything nameable about it
// lives here so no payload text is hard-coded in the patch engine.
type Payload struct {
	TrapState       string `yaml:"trap-state"`
	QuarantineState string `yaml:"quarantine-state"`
	InputSignal     string `yaml:"input-signal"`
	InputWidth      int    `yaml:"input-width"`
	Sentinel        string `yaml:"sentinel"`
	ResetState      string `yaml:"reset-state"`
}

type Config struct {
	Extensions []string `yaml:"extensions"`
	Workers    int      `yaml:"workers"`
	Backup     Backup   `yaml:"backup"`
	Payload    Payload  `yaml:"payload"`
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a YAML config file and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
