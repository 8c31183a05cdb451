package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/provkit/provkit/pkg/check"
	"github.com/provkit/provkit/pkg/presenter"
	"github.com/provkit/provkit/pkg/telemetry"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that provider manifests match their hooks",
	Long: `Check provider manifests against the registered hooks: every declared
hook class must resolve, the generated sections must be well-formed, and
their content must match what extraction produces today.

A non-zero exit reports at least one finding, which makes the command
suitable as a CI gate.

Example:
  # Check every provider under the providers root
  provkit check

  # Check a single provider
  provkit check --provider postgres`,
	RunE: traced(runCheck),
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringP("provider", "p", "", "Check a single provider instead of all of them")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	provider, _ := cmd.Flags().GetString("provider")

	checker, err := check.New(nil)
	if err != nil {
		return err
	}

	var report *check.Report
	if provider != "" {
		report, err = checker.Provider(ctx, providersRoot(), provider)
	} else {
		report, err = checker.All(ctx, providersRoot())
	}
	if err != nil {
		return err
	}
	telemetry.SetAttributes(ctx,
		attribute.Int("check.providers", report.Providers),
		attribute.Int("check.hooks", report.Hooks),
		attribute.Int("check.findings", len(report.Findings)),
	)

	if report.Clean() {
		presenter.Success(fmt.Sprintf("%d provider(s), %d hook(s): manifests match their hooks",
			report.Providers, report.Hooks))
		return nil
	}

	for _, finding := range report.Findings {
		fmt.Println(finding.String())
	}
	return errors.Errorf("%d finding(s) across %d provider(s)", len(report.Findings), report.Providers)
}
