package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/dircache/internal/cache"
)

func newStatsCmd(a *app) *cobra.Command {
	var (
		namespace string
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Long: `Shows entry counts, sizes and hit rates, per namespace and in total.

Hit and miss counters survive across runs when persistence is enabled.`,
		Example: `  # Table of every namespace
  dircache stats

  # One namespace
  dircache stats --namespace folder

  # Full diagnostic document
  dircache stats --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				ns     cache.Namespace
				scoped bool
			)
			if namespace != "" {
				parsed, err := cache.ParseNamespace(namespace)
				if err != nil {
					return err
				}
				ns, scoped = parsed, true
			}

			return a.withCache(cmd.Context(), func(c *cache.Cache) error {
				out := cmd.OutOrStdout()
				switch {
				case jsonOut && scoped:
					return writeJSON(out, c.NamespaceStats(ns))
				case jsonOut:
					doc, err := c.ExportStats()
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintln(out, doc)
					return nil
				}

				var reports []cache.Report
				if scoped {
					reports = []cache.Report{c.NamespaceStats(ns)}
				} else {
					for _, n := range cache.Namespaces() {
						reports = append(reports, c.NamespaceStats(n))
					}
				}
				view := statsView{
					Config:  c.Config(),
					Reports: reports,
					Total:   c.Stats(),
				}
				if isTerminal(out) {
					return renderStyledStats(out, view)
				}
				return renderPlainStats(out, view)
			})
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "limit to one namespace (file, folder, drive, recent, metadata)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")

	return cmd
}
