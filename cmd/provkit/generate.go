package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/provkit/provkit/pkg/extract"
	"github.com/provkit/provkit/pkg/manifest"
	"github.com/provkit/provkit/pkg/presenter"
	"github.com/provkit/provkit/pkg/telemetry"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate connection metadata from provider hooks",
	Long: `Generate the ui-field-behaviour and conn-fields manifest sections from
registered provider hooks.

By default the generated sections are printed as YAML fragments, one per
hook, ready to paste into provider.yaml. With --update-yaml the provider's
manifest is rewritten in place instead; only the two generated keys change,
everything else in the file is preserved.

Example:
  # Print fragments for every hook the provider declares
  provkit generate --provider postgres

  # Print the fragment of a single hook class
  provkit generate --hook-class github.com/provkit/provkit/providers/http.Hook

  # Rewrite providers/postgres/provider.yaml in place
  provkit generate --provider postgres --update-yaml`,
	RunE: traced(runGenerate),
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("provider", "p", "", "Provider directory name under the providers root")
	generateCmd.Flags().String("hook-class", "", "Fully qualified hook class name")
	generateCmd.Flags().Bool("update-yaml", false, "Write the generated sections back into provider.yaml")
	generateCmd.Flags().StringP("output", "o", "", "Write fragments to a file instead of stdout")

	generateCmd.MarkFlagsMutuallyExclusive("provider", "hook-class")
	generateCmd.MarkFlagsOneRequired("provider", "hook-class")
}

// generateOptions carries the generate command's flags.
type generateOptions struct {
	Provider   string
	HookClass  string
	UpdateYAML bool
	Output     string
}

func (o *generateOptions) validate() error {
	if o.UpdateYAML && o.Provider == "" {
		return errors.New("--update-yaml requires --provider")
	}
	if o.UpdateYAML && o.Output != "" {
		return errors.New("--update-yaml and --output are mutually exclusive")
	}
	return nil
}

func generateOptionsFromFlags(cmd *cobra.Command) *generateOptions {
	opts := &generateOptions{}
	opts.Provider, _ = cmd.Flags().GetString("provider")
	opts.HookClass, _ = cmd.Flags().GetString("hook-class")
	opts.UpdateYAML, _ = cmd.Flags().GetBool("update-yaml")
	opts.Output, _ = cmd.Flags().GetString("output")
	return opts
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	opts := generateOptionsFromFlags(cmd)
	if err := opts.validate(); err != nil {
		return err
	}

	extractor := extract.New(nil)

	if opts.HookClass != "" {
		meta, err := extractor.Hook(ctx, opts.HookClass)
		if err != nil {
			return err
		}
		if meta.Empty() {
			return errors.Errorf("hook %s contributes no connection metadata", opts.HookClass)
		}
		return writeFragments(opts.Output, []extract.HookMetadata{*meta})
	}

	metas, extractErr := extractor.Provider(ctx, providersRoot(), opts.Provider)
	telemetry.SetAttributes(ctx, attribute.Int("hooks.extracted", len(metas)))
	if extractErr != nil && len(metas) == 0 {
		return extractErr
	}

	if opts.UpdateYAML {
		if extractErr != nil {
			return errors.Wrap(extractErr, "refusing to update the manifest while hooks fail to extract")
		}
		return updateManifest(opts.Provider, metas)
	}

	kept := make([]extract.HookMetadata, 0, len(metas))
	for _, meta := range metas {
		if !meta.Empty() {
			kept = append(kept, meta)
		}
	}
	if len(kept) == 0 && extractErr == nil {
		return errors.Errorf("provider %q contributes no connection metadata", opts.Provider)
	}
	if err := writeFragments(opts.Output, kept); err != nil {
		return err
	}
	// Partial success: the fragments above are real, but the run still
	// fails so CI catches the broken hooks.
	return errors.Wrap(extractErr, "some hooks failed to extract")
}

func updateManifest(provider string, metas []extract.HookMetadata) error {
	info, err := manifest.Locate(providersRoot(), provider)
	if err != nil {
		return err
	}
	result, err := manifest.Update(info.Path, extract.Entries(metas))
	if err != nil {
		return err
	}

	for _, class := range result.Replaced {
		presenter.Warning(fmt.Sprintf("overwrote previously declared metadata for %s", class))
	}
	for _, class := range result.Missing {
		presenter.Warning(fmt.Sprintf("no connection-types entry for %s; fragment not recorded", class))
	}

	if !result.Changed {
		presenter.Info(fmt.Sprintf("%s already up to date", info.Path))
		return nil
	}
	presenter.Success(fmt.Sprintf("updated %s (%d hook(s))", info.Path, len(result.Matched)))
	return nil
}

// writeFragments renders fragments to a file, or to stdout when path is
// empty. Everything else the CLI says goes to stderr, so stdout stays
// clean YAML.
func writeFragments(path string, metas []extract.HookMetadata) error {
	var buf bytes.Buffer
	if err := extract.RenderFragments(&buf, metas); err != nil {
		return err
	}
	if path == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "writing fragments to %s", path)
	}
	presenter.Success(fmt.Sprintf("wrote fragments to %s", path))
	return nil
}
