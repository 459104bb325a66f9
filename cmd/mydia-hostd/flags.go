package main

import (
	"flag"
	"fmt"
	"os"
)

// version is injected at build time with -ldflags "-X main.version=...". Defaults to dev.
var version = "dev"

// cliConfig holds user supplied flag values prior to translation into
// host.Config so main.go can validate and map.
type cliConfig struct {
	relayURL    string
	bindPort    uint
	keypairPath string
	logLevel    string
	showVersion bool
}

func parseFlags(args []string) (*cliConfig, error) {
	fs := flag.NewFlagSet("mydia-hostd", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	cfg := &cliConfig{}

	fs.StringVar(&cfg.relayURL, "relay-url", "", "Relay URL to register with (empty = transport default)")
	fs.UintVar(&cfg.bindPort, "bind-port", 0, "UDP port to bind (0 = random)")
	fs.StringVar(&cfg.keypairPath, "keypair", "", "Path to a 32-byte identity secret file (empty = ephemeral identity)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.bindPort > 65535 {
		err := fmt.Errorf("bind-port must be between 0 and 65535, got %d", cfg.bindPort)
		fmt.Fprintln(fs.Output(), err)
		return nil, err
	}

	switch cfg.logLevel {
	case "debug", "info", "warn", "error":
	default:
		err := fmt.Errorf("invalid log-level %q", cfg.logLevel)
		fmt.Fprintln(fs.Output(), err)
		return nil, err
	}

	return cfg, nil
}
