package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"taxsafe/internal/compliance/models"
	complianceservice "taxsafe/internal/compliance/service"
	"taxsafe/internal/platform/logger"
	"taxsafe/internal/ruleset/loader"
	rulesetservice "taxsafe/internal/ruleset/service"
	"taxsafe/internal/ruleset/store/memory"
	"taxsafe/pkg/requestcontext"
)

type dryRunOptions struct {
	bundlePath  string
	profilePath string
	taxYear     int
	asOf        string
}

func newDryRunCommand() *cobra.Command {
	opts := &dryRunOptions{}
	cmd := &cobra.Command{
		Use:   "dry-run",
		Short: "Evaluate a profile against a bundle without a server or database",
		Long: `dry-run imports the bundle into an in-memory store as a draft, then runs the
same evaluation the API uses and prints the outcome, explanations, deadlines and
obligations as JSON. The profile file may be YAML or JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDryRun(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.bundlePath, "bundle", "", "rule-set bundle (YAML)")
	cmd.Flags().StringVar(&opts.profilePath, "profile", "", "business profile (YAML or JSON object)")
	cmd.Flags().IntVar(&opts.taxYear, "tax-year", 0, "tax year to evaluate")
	cmd.Flags().StringVar(&opts.asOf, "as-of", "", "evaluate as of this date (YYYY-MM-DD); defaults to now")
	_ = cmd.MarkFlagRequired("bundle")
	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("tax-year")
	return cmd
}

func runDryRun(cmd *cobra.Command, opts *dryRunOptions) error {
	now := time.Now().UTC()
	if opts.asOf != "" {
		t, err := time.Parse(time.DateOnly, opts.asOf)
		if err != nil {
			return fmt.Errorf("--as-of must be a YYYY-MM-DD date")
		}
		now = t
	}
	ctx := requestcontext.WithTime(cmd.Context(), now)
	log := logger.NewWithWriter(cmd.ErrOrStderr(), "text", "warn")

	bundle, err := loader.LoadFile(opts.bundlePath)
	if err != nil {
		return fmt.Errorf("load bundle: %s", describe(err))
	}
	profile, err := readProfile(opts.profilePath)
	if err != nil {
		return err
	}

	ruleSets := memory.New()
	rs, err := rulesetservice.New(ruleSets, rulesetservice.WithLogger(log)).Import(ctx, bundle, false)
	if err != nil {
		return fmt.Errorf("build bundle: %s", describe(err))
	}

	svc := complianceservice.New(memoryDependencies(ruleSets, nil), complianceservice.WithLogger(log))
	eval, err := svc.DryRun(ctx, complianceservice.DryRunRequest{
		Profile:   profile,
		TaxYear:   opts.taxYear,
		RuleSetID: &rs.ID,
	})
	if err != nil {
		return fmt.Errorf("dry run: %s", describe(err))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(eval)
}

func readProfile(path string) (models.Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var profile map[string]any
	if err := yaml.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("profile must be a YAML or JSON object: %w", err)
	}
	if profile == nil {
		profile = map[string]any{}
	}
	return models.Profile(profile), nil
}
