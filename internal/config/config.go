// Package config loads wiredump settings from TOML.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	FormatRaw = "raw"
	FormatHex = "hex"

	FramingNone = "none"
	FramingU16  = "u16"
)

// Config is the wiredump runtime configuration.
type Config struct {
	Input       string // capture path, "-" for stdin
	Format      string // raw | hex
	Framing     string // none | u16
	SkipUnknown bool
	MaxFrame    int
	LogLevel    string
}

type fileConfig struct {
	Input       string `toml:"input"`
	Format      string `toml:"format"`
	Framing     string `toml:"framing"`
	SkipUnknown bool   `toml:"skip_unknown"`
	MaxFrame    int    `toml:"max_frame"`
	LogLevel    string `toml:"log_level"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Input:    "-",
		Format:   FormatRaw,
		Framing:  FramingU16,
		MaxFrame: 65535,
		LogLevel: "info",
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load wiredump config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load wiredump config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("input") {
		cfg.Input = strings.TrimSpace(raw.Input)
	}
	if meta.IsDefined("format") {
		cfg.Format = strings.ToLower(strings.TrimSpace(raw.Format))
	}
	if meta.IsDefined("framing") {
		cfg.Framing = strings.ToLower(strings.TrimSpace(raw.Framing))
	}
	if meta.IsDefined("skip_unknown") {
		cfg.SkipUnknown = raw.SkipUnknown
	}
	if meta.IsDefined("max_frame") {
		cfg.MaxFrame = raw.MaxFrame
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	return cfg, cfg.Validate()
}

// Validate checks that every setting has a usable value.
func (c Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("config: input is required")
	}
	switch c.Format {
	case FormatRaw, FormatHex:
	default:
		return fmt.Errorf("config: unsupported format %q", c.Format)
	}
	switch c.Framing {
	case FramingNone, FramingU16:
	default:
		return fmt.Errorf("config: unsupported framing %q", c.Framing)
	}
	if c.MaxFrame <= 0 || c.MaxFrame > 65535 {
		return fmt.Errorf("config: max_frame %d out of range 1..65535", c.MaxFrame)
	}
	return nil
}
