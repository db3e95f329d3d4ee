package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rshade/dircache/internal/cache"
	"github.com/rshade/dircache/internal/explorer"
)

func newStatCmd(a *app) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stat <path>",
		Short: "Show metadata of a file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withExplorer(cmd.Context(), func(_ *cache.Cache, ex *explorer.Explorer) error {
				entry, err := ex.Stat(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if jsonOut {
					return writeJSON(out, entry)
				}
				kind := "file"
				if entry.IsDir {
					kind = "directory"
				}
				_, _ = fmt.Fprintf(out, "Name:     %s\n", entry.Name)
				_, _ = fmt.Fprintf(out, "Path:     %s\n", entry.Path)
				_, _ = fmt.Fprintf(out, "Type:     %s\n", kind)
				//nolint:gosec // sizes are non-negative
				_, _ = fmt.Fprintf(out, "Size:     %s (%d bytes)\n", humanize.Bytes(uint64(entry.Size)), entry.Size)
				if mt, ok := entry.ModTime(); ok {
					_, _ = fmt.Fprintf(out, "Modified: %s (%s)\n", entry.Modified, humanize.Time(mt))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")

	return cmd
}

func newDrivesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drives",
		Short: "List mounted drives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withExplorer(cmd.Context(), func(_ *cache.Cache, ex *explorer.Explorer) error {
				drives, err := ex.Drives(cmd.Context())
				if err != nil {
					return err
				}
				for _, d := range drives {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), d)
				}
				return nil
			})
		},
	}
}

func newHomeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Print the home directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withExplorer(cmd.Context(), func(_ *cache.Cache, ex *explorer.Explorer) error {
				dir, err := ex.HomeDir()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			})
		},
	}
}
