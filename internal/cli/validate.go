package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"taxsafe/internal/ruleset/loader"
	id "taxsafe/pkg/domain"
	dErrors "taxsafe/pkg/domain-errors"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <bundle.yaml>...",
		Short: "Check rule-set bundles without importing them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				rs, err := validateBundle(path)
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s: %s\n", path, describe(err))
					continue
				}
				fmt.Fprintf(out, "ok   %s version=%s rules=%d deadlines=%d\n", path, rs.Version, len(rs.Rules), len(rs.Deadlines))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d bundle(s) invalid", failed, len(args))
			}
			return nil
		},
	}
}

type bundleSummary struct {
	Version   string
	Rules     []string
	Deadlines []string
}

func validateBundle(path string) (*bundleSummary, error) {
	bundle, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	rs, err := bundle.Build(id.NewRuleSetID(), time.Now().UTC())
	if err != nil {
		return nil, err
	}
	summary := &bundleSummary{Version: rs.Version}
	for _, r := range rs.Rules {
		summary.Rules = append(summary.Rules, r.Key)
	}
	for _, d := range rs.Deadlines {
		summary.Deadlines = append(summary.Deadlines, d.Key)
	}
	return summary, nil
}

func describe(err error) string {
	if msg := dErrors.MessageOf(err); msg != "" {
		return msg
	}
	return err.Error()
}
