// Package cli provides the wmsconsole command-line interface:
//   - serve: run the console HTTP server
//   - routes: print the route table a menu file resolves to
//   - validate: check the configuration and show where each value came from
//   - version: show build information
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nna-wms/wmsconsole/pkg/cli/internal/output"
	"github.com/nna-wms/wmsconsole/pkg/config"
)

var (
	// Persistent flags available to all subcommands
	configFile string
	envFiles   []string
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wmsconsole",
	Short: "wmsconsole is the web console of the warehouse-management system",
	Long: `wmsconsole serves the warehouse-management console. Each signed-in user
gets the pages their menu permissions grant, backed by the WMS REST API.

Configuration is layered: built-in defaults, a YAML file (--config), WMS_*
environment variables (optionally from .env files) and command-line flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "Env files loaded before reading WMS_* variables")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}

// loadConfig runs the file and environment layers. Commands apply their own
// flag overrides on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{File: configFile, EnvFiles: envFiles})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// printResult writes data as JSON when --json is set, otherwise calls textFn.
// In JSON mode nothing else is written to stdout.
func printResult(cmd *cobra.Command, data any, textFn func()) error {
	if jsonOutput {
		return output.JSON(cmd.OutOrStdout(), data)
	}
	textFn()
	return nil
}
