// Package cmd provides the commands of freightd.
package cmd

import (
	"github.com/go-kit/kit/log"
	"github.com/spf13/cobra"

	"github.com/Qalifah/freight/config"
)

var (
	cfg    = config.Load()
	logger log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "freightd",
	Short: "Find and price container routes",
	Long: `freightd searches internal trade-lane data and external carriers for
container routes between two points and prices them in one currency.

Examples:
  freightd serve --port 8080
  freightd calculate --date 2025-06-10 --from custom=6 --to custom=82 --weight 20000 --size 20
  freightd rates --date 2025-06-10`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger = cfg.Logger()
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "postgres connection string; the demo data set is used when empty")
	flags.StringVar(&cfg.FescoAPIKey, "fesco-api-key", cfg.FescoAPIKey, "FESCO API key; the carrier is disabled when empty")
	flags.StringVar(&cfg.FescoBaseURL, "fesco-url", cfg.FescoBaseURL, "FESCO offers API base URL")
	flags.StringVar(&cfg.FescoPointsURL, "fesco-points-url", cfg.FescoPointsURL, "FESCO points API base URL")
	flags.StringVar(&cfg.CBRURL, "cbr-url", cfg.CBRURL, "daily exchange rates feed")
	flags.StringVar(&cfg.MarkupPercent, "markup", cfg.MarkupPercent, "markup percentage applied when converting prices")
	flags.StringVar(&cfg.DropPriority, "drop-priority", cfg.DropPriority, "drop fee tiers in priority order (full, rail, sea)")
	flags.StringVar(&cfg.InternalName, "internal-name", cfg.InternalName, "name of the internal route source")
	flags.StringVar(&cfg.DefaultLang, "lang", cfg.DefaultLang, "default language of point names (ru, en)")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (logfmt, json, zap)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(migrateCmd)
}
