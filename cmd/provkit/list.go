package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/provkit/provkit/pkg/hook"
	"github.com/provkit/provkit/pkg/logger"
	"github.com/provkit/provkit/pkg/manifest"
	"github.com/provkit/provkit/pkg/presenter"
	"github.com/provkit/provkit/pkg/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers and registered hooks",
}

var listProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List provider manifests under the providers root",
	RunE: func(cmd *cobra.Command, _ []string) error {
		infos, err := manifest.Discover(providersRoot())
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			presenter.Info(fmt.Sprintf("no provider manifests under %s", providersRoot()))
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Provider\tHooks\tManifest")
		fmt.Fprintln(tw, "--------\t-----\t--------")
		for _, info := range infos {
			hooks := "?"
			if m, err := manifest.Load(info.Path); err != nil {
				logger.G(cmd.Context()).WithError(err).WithField("provider", info.Name).Warn("unreadable manifest")
			} else {
				hooks = strconv.Itoa(len(m.HookClassNames()))
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, hooks, info.Path)
		}
		return tw.Flush()
	},
}

var listHooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "List registered hook classes",
	Long: `List every hook class in the registry, with its connection type and the
metadata capabilities it implements.

Example:
  provkit list hooks
  provkit list hooks --filter '*/providers/http.*'`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		pattern, _ := cmd.Flags().GetString("filter")
		classes, err := registry.Filter(pattern)
		if err != nil {
			return err
		}
		if len(classes) == 0 {
			presenter.Info("no registered hooks match")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Class\tType\tCapabilities")
		fmt.Fprintln(tw, "-----\t----\t------------")
		for _, class := range classes {
			h, err := registry.Lookup(class)
			if err != nil {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", class, h.ConnectionType(), capabilities(h))
		}
		return tw.Flush()
	},
}

func capabilities(h hook.Hook) string {
	caps := make([]string, 0, 2)
	if _, ok := h.(hook.FormFieldProvider); ok {
		caps = append(caps, "form-fields")
	}
	if _, ok := h.(hook.FieldBehaviorProvider); ok {
		caps = append(caps, "field-behavior")
	}
	if len(caps) == 0 {
		return "-"
	}
	return strings.Join(caps, ", ")
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listProvidersCmd)
	listCmd.AddCommand(listHooksCmd)

	listHooksCmd.Flags().String("filter", "", "Filter classes by glob pattern or substring")
}
