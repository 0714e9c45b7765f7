package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"paydash/internal/config"
	"paydash/internal/logger"
	"paydash/internal/reconcile"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the reconciled payment summary for a date window",
	Long: `Fetch supplier payment movements from Omie, reconcile them against the
configured business rules and print the aggregated summary as JSON.

This is the command-line equivalent of GET /api/dashboard.`,
	Example: `  # Current month, configured supplier allow-list
  paydash summary

  # Explicit window
  paydash summary --from 01/03/2025 --to 31/03/2025

  # Explicit suppliers
  paydash summary --from 01/03/2025 --to 31/03/2025 --suppliers 4807594928,5202017644

  # Accounts-payable records by due date instead of payment movements
  paydash summary --from 01/03/2025 --to 31/03/2025 --due-dates`,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().String("from", "", "Window start (DD/MM/YYYY, default: first day of this month)")
	summaryCmd.Flags().String("to", "", "Window end (DD/MM/YYYY, default: today)")
	summaryCmd.Flags().String("suppliers", "", "Comma-separated supplier codes (default: configured allow-list)")
	summaryCmd.Flags().Bool("due-dates", false, "Query the accounts-payable endpoint by due date instead of payment movements")
}

func runSummary(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("summary")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	suppliersFlag, _ := cmd.Flags().GetString("suppliers")
	dueDates, _ := cmd.Flags().GetBool("due-dates")

	var window reconcile.Window
	if from == "" || to == "" {
		window = reconcile.CurrentMonth(time.Now())
	} else {
		if window, err = reconcile.ParseWindow(from, to); err != nil {
			return err
		}
	}

	var supplierIDs []int64
	if strings.TrimSpace(suppliersFlag) != "" {
		for _, part := range strings.Split(suppliersFlag, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid supplier code %q", part)
			}
			supplierIDs = append(supplierIDs, id)
		}
	}

	log.Info().
		Str("from", window.StartText()).
		Str("to", window.EndText()).
		Bool("due_dates", dueDates).
		Msg("Running one-shot dashboard query")

	svc, _ := buildPipeline(cfg)
	query := svc.Query
	if dueDates {
		query = svc.QueryDueDates
	}
	summary, err := query(context.Background(), window, supplierIDs)
	if err != nil {
		return fmt.Errorf("dashboard query failed: %w", err)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
