package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"paydash/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "paydash",
	Short: "paydash - supplier payment dashboard for the Omie ERP",
	Long: `paydash queries the Omie ERP for supplier payment records, reconciles
them against the configured business rules (supplier allow-list, date window,
expected contract amounts) and aggregates them for the finance dashboard.

Credentials are read from the environment (or a .env file):
  OMIE_APP_KEY    - Omie application key
  OMIE_APP_SECRET - Omie application secret`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
