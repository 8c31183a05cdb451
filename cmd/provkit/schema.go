package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/provkit/provkit/pkg/manifest"
	"github.com/provkit/provkit/pkg/presenter"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the generated metadata sections",
	Long: `Print the JSON Schema describing the ui-field-behaviour and conn-fields
manifest sections. Wire it into your editor for completion, or validate
manifests with any JSON Schema tool.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := manifest.MetadataSchemaJSON()
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			fmt.Println(string(data))
			return nil
		}
		if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
			return errors.Wrapf(err, "writing schema to %s", output)
		}
		presenter.Success(fmt.Sprintf("wrote schema to %s", output))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().StringP("output", "o", "", "Write the schema to a file instead of stdout")
}
