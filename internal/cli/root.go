package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/dircache/internal/cache"
	"github.com/rshade/dircache/internal/config"
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewRootCmd creates the root Cobra command for the dircache CLI.
func NewRootCmd(ver string) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "dircache",
		Short:         "Cached directory explorer",
		Long:          "dircache: browse directories through a persistent, size-bounded metadata cache",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.cleanup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVar(&a.flags.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "",
		"configuration directory (default $"+config.EnvConfigDir+" or ~/"+config.DirName+")")
	cmd.PersistentFlags().StringVar(&a.flags.cacheTTL, "cache-ttl", "",
		"TTL for entries stored by this run, in seconds or as a duration (overrides config)")

	cmd.AddCommand(
		newLsCmd(a),
		newStatCmd(a),
		newDrivesCmd(a),
		newHomeCmd(a),
		newStatsCmd(a),
		newConfigCmd(a),
		newClearCmd(a),
		newVersionCmd(ver),
	)

	return cmd
}

// rootFlags holds the persistent flags.
type rootFlags struct {
	debug     bool
	configDir string
	cacheTTL  string
}

// entryTTL parses --cache-ttl. Zero means the cache default.
func (f rootFlags) entryTTL() (time.Duration, error) {
	if f.cacheTTL == "" {
		return 0, nil
	}
	ttl, err := cache.ParseTTL(f.cacheTTL)
	if err != nil {
		return 0, fmt.Errorf("--cache-ttl: %w", err)
	}
	return ttl, nil
}

const rootCmdExample = `  # List a directory, twice, to see the second listing served from cache
  dircache ls ~/projects --repeat 2

  # Show cache statistics
  dircache stats

  # Show statistics of one namespace as JSON
  dircache stats --namespace folder --json

  # Lower the entry ceiling
  dircache config set cache.max_entries 5000

  # List, drop the cached listing and list again
  dircache ls ~/projects --invalidate

  # Reset the hit and miss counters
  dircache clear`
