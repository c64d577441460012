// Package cli implements the taxsafe command: the HTTP server plus offline
// tools for checking rule-set bundles against sample profiles.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "taxsafe",
		Short: "Tax compliance intelligence engine",
		Long: `taxsafe evaluates small-business profiles against versioned tax rule sets,
schedules filing deadlines, scores tax safety and raises bookkeeping review issues.

Run the API:
  taxsafe serve

Check a rule-set bundle before importing it:
  taxsafe validate configs/rulesets/ng-2025.yaml
  taxsafe dry-run --bundle configs/rulesets/ng-2025.yaml --profile profile.yaml --tax-year 2025`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCommand())
	root.AddCommand(newDryRunCommand())
	root.AddCommand(newValidateCommand())
	return root
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}
