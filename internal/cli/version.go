package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/dircache/pkg/version"
)

func newVersionCmd(ver string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			v, err := version.Parse(ver)
			if err != nil {
				_, _ = fmt.Fprintf(out, "dircache %s (unversioned build)\n", ver)
				return nil //nolint:nilerr // an unparsable build string is still printable
			}
			suffix := ""
			if v.Prerelease() != "" {
				suffix = " (development build)"
			}
			_, _ = fmt.Fprintf(out, "dircache %s%s\n", v.String(), suffix)
			return nil
		},
	}
}
