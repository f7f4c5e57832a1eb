package emulator

import (
	"github.com/BurntSushi/toml"
)

// Config holds front-end configuration, optionally read from a TOML
// file. Command line flags override individual fields.
type Config struct {
	DelayMs   int    `toml:"delay_ms"`   // Inter-instruction delay in milliseconds.
	Screen    string `toml:"screen"`     // Rendering backend: "window", "terminal", or "none".
	Scale     int    `toml:"scale"`      // Window pixel scale.
	Verbose   bool   `toml:"verbose"`    // Verbose opcode tracing.
	KeepIndex bool   `toml:"keep_index"` // movm leaves the address register unmodified.
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		DelayMs: 30,
		Screen:  "terminal",
		Scale:   8,
	}
}

// LoadConfig reads a TOML configuration file over the defaults.
func LoadConfig(path string) (cfg Config, err error) {
	cfg = DefaultConfig()
	_, err = toml.DecodeFile(path, &cfg)
	return
}
