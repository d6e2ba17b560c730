package config

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	labelNameRe = regexp.MustCompile(`^[A-Z_]+$`)
	identRe     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func applyDefaults(cfg *Config) {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".v", ".sv"}
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.Backup.Suffix == "" {
		cfg.Backup.Suffix = ".bak"
	}
	if cfg.Backup.Policy == "" {
		cfg.Backup.Policy = PolicySkipIfExists
	}
	if cfg.Payload.TrapState == "" {
		cfg.Payload.TrapState = "DEADBEEF_DETECT"
	}
	if cfg.Payload.QuarantineState == "" {
		cfg.Payload.QuarantineState = "SPECIAL_IDLE"
	}
	if cfg.Payload.InputSignal == "" {
		cfg.Payload.InputSignal = "data_in"
	}
	if cfg.Payload.InputWidth == 0 {
		cfg.Payload.InputWidth = 32
	}
	if cfg.Payload.Sentinel == "" {
		cfg.Payload.Sentinel = "32'hDEADBEEF"
	}
	if cfg.Payload.ResetState == "" {
		cfg.Payload.ResetState = "IDLE"
	}
}

// Validate checks the config for errors and sets defaults.
func Validate(cfg *Config) error {
	applyDefaults(cfg)

	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("config: extension %q must start with a dot", ext)
		}
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("config: workers must be >= 1")
	}

	if !strings.HasPrefix(cfg.Backup.Suffix, ".") {
		return fmt.Errorf("config: backup.suffix %q must start with a dot", cfg.Backup.Suffix)
	}
	switch cfg.Backup.Policy {
	case PolicySkipIfExists, PolicyAlwaysOverwrite:
	default:
		return fmt.Errorf("config: backup.policy %q (must be %s or %s)",
			cfg.Backup.Policy, PolicySkipIfExists, PolicyAlwaysOverwrite)
	}

	p := cfg.Payload
	// The injected state names must satisfy the same uppercase/underscore
	// convention the label scanner recognizes, or a patched file would not
	// be seen as already patched on a second run.
	if !labelNameRe.MatchString(p.TrapState) {
		return fmt.Errorf("config: payload.trap-state %q must match [A-Z_]+", p.TrapState)
	}
	if !labelNameRe.MatchString(p.QuarantineState) {
		return fmt.Errorf("config: payload.quarantine-state %q must match [A-Z_]+", p.QuarantineState)
	}
	if p.TrapState == p.QuarantineState {
		return fmt.Errorf("config: payload trap and quarantine states must differ")
	}
	if !labelNameRe.MatchString(p.ResetState) {
		return fmt.Errorf("config: payload.reset-state %q must match [A-Z_]+", p.ResetState)
	}
	if !identRe.MatchString(p.InputSignal) {
		return fmt.Errorf("config: payload.input-signal %q is not a valid identifier", p.InputSignal)
	}
	if p.InputWidth < 1 || p.InputWidth > 64 {
		return fmt.Errorf("config: payload.input-width must be between 1 and 64")
	}
	if strings.TrimSpace(p.Sentinel) == "" {
		return fmt.Errorf("config: payload.sentinel is required")
	}

	return nil
}
