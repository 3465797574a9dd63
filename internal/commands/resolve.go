package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewResolveCommand creates the resolve command
func NewResolveCommand(root *RootOptions) *cobra.Command {
	var invalidate bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the account service base URL",
		Long: `Probes the configured candidates and prints the first that answers.
A cached answer younger than the TTL is printed without probing.`,
		Example: `  # Use the cache when fresh
  plantify resolve

  # Drop the cache and probe again
  plantify resolve --invalidate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.run(cmd, func(s *Stack) error {
				ctx := cmd.Context()
				if invalidate {
					s.Resolver.Invalidate(ctx)
				}
				url := s.Resolver.Resolve(ctx)
				if _, ok := s.Resolver.Current(); !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (fallback, no candidate answered)\n", url)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&invalidate, "invalidate", false, "Ignore and clear the cached URL")

	return cmd
}
