// Command wiredump decodes a capture of peer messages and logs each one.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/oy3o/wiremsg/internal/config"
	"github.com/oy3o/wiremsg/internal/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "wiredump:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("wiredump", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a TOML config file")
	input := fs.String("input", "", "capture file, - for stdin")
	format := fs.String("format", "", "capture format: raw or hex")
	framing := fs.String("framing", "", "message framing: none or u16")
	skipUnknown := fs.Bool("skip-unknown", false, "log and skip messages with unknown tags")
	logLevel := fs.String("log-level", "", "log level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input = *input
		case "format":
			cfg.Format = *format
		case "framing":
			cfg.Framing = *framing
		case "skip-unknown":
			cfg.SkipUnknown = *skipUnknown
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.Init("wiredump", cfg.LogLevel)

	src, closeFn, err := openInput(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	stats, err := newDumper(cfg, logger).dump(src)
	logger.Info().Int("messages", stats.Messages).Int("skipped", stats.Skipped).Msg("done")
	return err
}
