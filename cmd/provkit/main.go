package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/provkit/provkit/pkg/logger"
	"github.com/provkit/provkit/pkg/presenter"

	// Reference providers register their hooks on import.
	_ "github.com/provkit/provkit/providers/docker"
	_ "github.com/provkit/provkit/providers/http"
	_ "github.com/provkit/provkit/providers/postgres"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("PROVKIT")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.provkit")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()

	viper.SetDefault("providers_root", "providers")
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("log_format", "text")

	// Add global flags
	rootCmd.PersistentFlags().String("providers-root", "providers", "Directory scanned for provider manifests")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress informational output")

	// Bind flags to viper
	viper.BindPFlag("providers_root", rootCmd.PersistentFlags().Lookup("providers-root"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

var rootCmd = &cobra.Command{
	Use:   "provkit",
	Short: "Provider connection metadata toolkit",
	Long: `Provkit extracts connection metadata (extra form fields and UI field
behavior) from registered provider hooks and keeps provider.yaml manifests
in sync with it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		presenter.SetQuiet(viper.GetBool("quiet"))
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

// providersRoot resolves the directory scanned for provider manifests.
func providersRoot() string {
	return viper.GetString("providers_root")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
