package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"paydash/internal/logger"
	"paydash/internal/omie"
)

// MovementLister is the slice of the Omie fetcher the pipeline consumes.
type MovementLister interface {
	ListMovements(ctx context.Context, from, to string) ([]omie.Movement, error)
}

// PayableLister fetches from the dedicated accounts-payable endpoint for the
// due-date view.
type PayableLister interface {
	ListPayables(ctx context.Context, from, to string) ([]omie.Payable, error)
}

// Directory supplies the supplier/customer name directory, normally through
// the time-boxed cache.
type Directory interface {
	Get(ctx context.Context) ([]omie.Client, error)
}

// Service runs the dashboard pipeline: fetch, reconcile, aggregate.
type Service struct {
	movements MovementLister
	payables  PayableLister
	directory Directory
	rules     SupplierRules
	log       zerolog.Logger
}

// NewService wires the pipeline with its collaborators and the configured
// business rules.
func NewService(movements MovementLister, payables PayableLister, directory Directory, rules SupplierRules) *Service {
	return &Service{
		movements: movements,
		payables:  payables,
		directory: directory,
		rules:     rules,
		log:       logger.WithComponent("reconcile"),
	}
}

// Query answers one dashboard request. The directory and the movement list
// are independent, so they are fetched in parallel and joined before
// reconciliation; either failure fails the query — no partial payload.
// A non-empty supplierIDs overrides the configured allow-list.
func (s *Service) Query(ctx context.Context, window Window, supplierIDs []int64) (*Summary, error) {
	const op = "Query"

	rules := s.rules.WithAllowedIDs(supplierIDs)

	s.log.Info().
		Str("from", window.StartText()).
		Str("to", window.EndText()).
		Ints64("suppliers", rules.AllowedIDs).
		Msg("Starting dashboard query")

	var (
		clients   []omie.Client
		movements []omie.Movement
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if clients, err = s.directory.Get(gctx); err != nil {
			return fmt.Errorf("directory fetch: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if movements, err = s.movements.ListMovements(gctx, window.StartText(), window.EndText()); err != nil {
			return fmt.Errorf("movement fetch: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	names := make(map[int64]string, len(clients))
	for _, c := range clients {
		names[c.Code] = c.TradeName
	}

	items := FilterMovements(movements, window, rules, names)
	summary := Aggregate(items)

	s.log.Info().
		Int("raw_movements", len(movements)).
		Int("line_items", summary.TotalCount).
		Float64("total_amount", summary.TotalAmount).
		Msg("Dashboard query completed")

	return &summary, nil
}

// QueryDueDates answers one dashboard request against the dedicated
// accounts-payable endpoint, keyed on due dates instead of payment dates.
// Fetch, failure and aggregation semantics match Query.
func (s *Service) QueryDueDates(ctx context.Context, window Window, supplierIDs []int64) (*Summary, error) {
	const op = "QueryDueDates"

	rules := s.rules.WithAllowedIDs(supplierIDs)

	s.log.Info().
		Str("from", window.StartText()).
		Str("to", window.EndText()).
		Ints64("suppliers", rules.AllowedIDs).
		Msg("Starting due-date dashboard query")

	var (
		clients  []omie.Client
		payables []omie.Payable
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if clients, err = s.directory.Get(gctx); err != nil {
			return fmt.Errorf("directory fetch: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if payables, err = s.payables.ListPayables(gctx, window.StartText(), window.EndText()); err != nil {
			return fmt.Errorf("payable fetch: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	names := make(map[int64]string, len(clients))
	for _, c := range clients {
		names[c.Code] = c.TradeName
	}

	items := FilterPayables(payables, window, rules, names)
	summary := Aggregate(items)

	s.log.Info().
		Int("raw_payables", len(payables)).
		Int("line_items", summary.TotalCount).
		Float64("total_amount", summary.TotalAmount).
		Msg("Due-date dashboard query completed")

	return &summary, nil
}
