package main

import (
	"fmt"
	"os"

	"github.com/aymanbagabas/go-udiff"
	"github.com/spf13/cobra"

	"github.com/provkit/provkit/pkg/extract"
	"github.com/provkit/provkit/pkg/manifest"
	"github.com/provkit/provkit/pkg/presenter"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show what generate --update-yaml would change",
	Long: `Show a unified diff between a provider's manifest and the manifest that
generate --update-yaml would write. An empty diff means the manifest is in
sync with its hooks.

Example:
  provkit diff --provider postgres`,
	RunE: traced(runDiff),
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().StringP("provider", "p", "", "Provider directory name under the providers root")
	diffCmd.MarkFlagRequired("provider")
}

func runDiff(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	provider, _ := cmd.Flags().GetString("provider")

	metas, err := extract.New(nil).Provider(ctx, providersRoot(), provider)
	if err != nil {
		return err
	}
	info, err := manifest.Locate(providersRoot(), provider)
	if err != nil {
		return err
	}
	before, err := os.ReadFile(info.Path)
	if err != nil {
		return err
	}
	after, result, err := manifest.Preview(info.Path, extract.Entries(metas))
	if err != nil {
		return err
	}

	if !result.Changed {
		presenter.Info(fmt.Sprintf("%s is in sync with its hooks", info.Path))
		return nil
	}
	fmt.Print(udiff.Unified(info.Path, info.Path+" (generated)", string(before), string(after)))
	return nil
}
