package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/dircache/internal/cache"
)

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Reset the persisted hit and miss counters",
		Long: `Clears every namespace and resets the hit, miss and eviction counters.
The reset counters are written to the persisted cache state.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCache(cmd.Context(), func(c *cache.Cache) error {
				before := c.Counters()
				c.ClearAll()
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared statistics (%d hits, %d misses reset)\n",
					before.Hits, before.Misses)
				return nil
			})
		},
	}
}
