package cli

import (
	"flag"
	"fmt"
	"strings"

	"github.com/raysh454/gesturepanel/internal/webclient"
)

// CLIArgs are the command-line arguments for cmd/panel. Flags override the
// matching config file values when set.
type CLIArgs struct {
	// ConfigPath is the YAML configuration file. Empty means built-in defaults.
	ConfigPath string

	// Mode overrides the configured build mode ("development" or "production").
	Mode string

	// Addr overrides the dev server listen address.
	Addr string

	// Backend overrides the gesture backend URL the dev server proxies to.
	Backend string

	// Debug forces debug-level logging.
	Debug bool

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by passing
// arbitrary slices. The function is deterministic and does not read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("panel", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "Path to YAML configuration file")
		mode       = fs.String("mode", "", "Build mode: development|production (default from config)")
		addr       = fs.String("addr", "", "Dev server listen address (default from config)")
		backend    = fs.String("backend", "", "Gesture backend URL (default from config)")
		debug      = fs.Bool("debug", false, "Enable debug logging")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(nil)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if *mode != "" {
		if _, err := webclient.ParseMode(*mode); err != nil {
			return nil, err
		}
	}

	return &CLIArgs{
		ConfigPath: *configPath,
		Mode:       *mode,
		Addr:       *addr,
		Backend:    *backend,
		Debug:      *debug,
		RawArgs:    args,
	}, nil
}
