package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"paydash/internal/config"
	"paydash/internal/directory"
	"paydash/internal/logger"
	"paydash/internal/omie"
	"paydash/internal/reconcile"
	"paydash/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP API",
	Long: `Run the dashboard HTTP API.

Endpoints:
  GET /api/dashboard  - reconciled payment summary for a date window
  GET /api/suppliers  - configured supplier filter choices
  GET /health         - liveness probe

Required environment variables:
  OMIE_APP_KEY    - Omie application key
  OMIE_APP_SECRET - Omie application secret`,
	Example: `  # Listen on the configured address (DASH_LISTEN_ADDR, default :8080)
  paydash serve

  # Listen on an explicit address
  paydash serve --addr :9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides DASH_LISTEN_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.ListenAddr
	}

	svc, rules := buildPipeline(cfg)
	handler := server.New(svc, rules)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().
		Str("addr", addr).
		Dur("omie_timeout", cfg.OmieTimeout).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Dashboard API listening")

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// buildPipeline wires gateway, fetcher, cache and reconciliation service from
// the loaded configuration.
func buildPipeline(cfg *config.Config) (*reconcile.Service, reconcile.SupplierRules) {
	gateway := omie.NewHTTPGateway(cfg.OmieBaseURL, cfg.OmieAppKey, cfg.OmieAppSecret, cfg.OmieTimeout)
	fetcher := omie.NewFetcher(gateway, cfg.OmiePageSize)
	cache := directory.NewCache(fetcher.ListClients, cfg.CacheTTL)
	rules := cfg.Rules()
	return reconcile.NewService(fetcher, fetcher, cache, rules), rules
}
