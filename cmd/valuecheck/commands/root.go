// Package commands implements the valuecheck CLI.
package commands

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pmallet/valuecheck/internal/app"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "valuecheck",
	Short: "Cheap-or-expensive stock valuation from financial ratios",
	Long: `valuecheck scores stocks on a 0-100 cheap-vs-expensive scale from
their financial ratios (PER, P/B, dividend yield, ...), fetched through
a chain of data sources with a local cache.

Examples:
  valuecheck score CAP.PA
  valuecheck score AAPL --profile dividend
  valuecheck batch AAPL MSFT GOOG
  valuecheck cache clear
  valuecheck serve`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// API keys are commonly kept in a local .env during development.
		_ = godotenv.Load()
	},
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is valuecheck.toml next to the binary)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// newApp initializes the application core for a CLI invocation.
func newApp() (*app.App, error) {
	if verbose {
		os.Setenv("VALUECHECK_LOG_LEVEL", "debug")
	}
	return app.NewApp(configFile)
}
