package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"paydash/internal/config"
)

var suppliersCmd = &cobra.Command{
	Use:   "suppliers",
	Short: "Print the configured supplier rules",
	Long: `Print the supplier allow-list, display names and any expected contract
amounts currently in effect (built-in defaults plus environment overrides).`,
	RunE: runSuppliers,
}

func init() {
	rootCmd.AddCommand(suppliersCmd)
}

func runSuppliers(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	rules := cfg.Rules()
	allowed := make(map[int64]bool, len(rules.AllowedIDs))
	for _, id := range rules.AllowedIDs {
		allowed[id] = true
	}

	ids := make([]int64, 0, len(rules.Names))
	for id := range rules.Names {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		line := fmt.Sprintf("%d  %s", id, rules.Names[id])
		if !allowed[id] {
			line += "  (not in allow-list)"
		}
		if expected, ok := rules.ExpectedAmounts[id]; ok {
			line += fmt.Sprintf("  expected=%s", expected.StringFixed(2))
		}
		fmt.Println(line)
	}
	return nil
}
