package omie

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"paydash/internal/logger"
)

// DefaultPageSize is the number of records requested per page. Omie caps
// page size at 500.
const DefaultPageSize = 500

// Fetcher walks the paginated list endpoints and concatenates all pages into
// one in-memory slice. Pages are fetched strictly sequentially to stay under
// the vendor's rate limits.
//
// A failed or malformed page after the first contributes zero items and a
// logged warning; only a first-page failure fails the whole fetch.
type Fetcher struct {
	gw       Gateway
	pageSize int
	log      zerolog.Logger
}

// NewFetcher creates a fetcher on top of the given gateway. A non-positive
// pageSize selects the default.
func NewFetcher(gw Gateway, pageSize int) *Fetcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Fetcher{
		gw:       gw,
		pageSize: pageSize,
		log:      logger.WithComponent("omie-fetcher"),
	}
}

// clientsPage and payablesPage share Omie's older pagination field names;
// movementsPage uses the newer nPagina convention. Keep them separate.
type clientsPage struct {
	Page         int      `json:"pagina"`
	TotalPages   int      `json:"total_de_paginas"`
	TotalRecords int      `json:"total_de_registros"`
	Clients      []Client `json:"clientes_cadastro"`
}

type payablesPage struct {
	Page         int       `json:"pagina"`
	TotalPages   int       `json:"total_de_paginas"`
	TotalRecords int       `json:"total_de_registros"`
	Payables     []Payable `json:"conta_pagar_cadastro"`
}

type movementsPage struct {
	Page         int        `json:"nPagina"`
	TotalPages   int        `json:"nTotPaginas"`
	TotalRecords int        `json:"nTotRegistros"`
	Movements    []Movement `json:"movimentos"`
}

// ListClients fetches the complete customer/vendor directory.
func (f *Fetcher) ListClients(ctx context.Context) ([]Client, error) {
	const op = "ListClients"

	params := func(page int) map[string]any {
		return map[string]any{
			"pagina":               page,
			"registros_por_pagina": f.pageSize,
		}
	}

	raw, err := f.gw.Call(ctx, "ListarClientes", params(1), "/geral/clientes/")
	if err != nil {
		return nil, fmt.Errorf("%s: first page: %w", op, err)
	}

	var first clientsPage
	if err := json.Unmarshal(raw, &first); err != nil {
		return nil, NewOmieError(op, ErrMalformedResponse, err.Error())
	}
	if first.Clients == nil {
		f.log.Warn().Int("page", 1).Msg("Directory page missing clientes_cadastro, treating as empty")
	}

	all := first.Clients
	for page := 2; page <= first.TotalPages; page++ {
		raw, err := f.gw.Call(ctx, "ListarClientes", params(page), "/geral/clientes/")
		if err != nil {
			f.log.Warn().Err(err).Int("page", page).Msg("Directory page fetch failed, skipping")
			continue
		}
		var next clientsPage
		if err := json.Unmarshal(raw, &next); err != nil {
			f.log.Warn().Err(err).Int("page", page).Msg("Directory page decode failed, skipping")
			continue
		}
		if next.Clients == nil {
			f.log.Warn().Int("page", page).Msg("Directory page missing clientes_cadastro, skipping")
			continue
		}
		all = append(all, next.Clients...)
	}

	f.log.Info().
		Int("clients", len(all)).
		Int("pages", first.TotalPages).
		Msg("Directory loaded")
	return all, nil
}

// ListPayables fetches every accounts-payable record whose due date falls in
// the inclusive [from, to] window. Dates are DD/MM/YYYY text, as Omie expects.
func (f *Fetcher) ListPayables(ctx context.Context, from, to string) ([]Payable, error) {
	const op = "ListPayables"

	params := func(page int) map[string]any {
		return map[string]any{
			"pagina":               page,
			"registros_por_pagina": f.pageSize,
			"filtrar_por_data_de":  from,
			"filtrar_por_data_ate": to,
		}
	}

	raw, err := f.gw.Call(ctx, "ListarContasPagar", params(1), "/financas/contapagar/")
	if err != nil {
		return nil, fmt.Errorf("%s: first page: %w", op, err)
	}

	var first payablesPage
	if err := json.Unmarshal(raw, &first); err != nil {
		return nil, NewOmieError(op, ErrMalformedResponse, err.Error())
	}
	if first.Payables == nil {
		f.log.Warn().Int("page", 1).Msg("Payables page missing conta_pagar_cadastro, treating as empty")
	}

	all := first.Payables
	for page := 2; page <= first.TotalPages; page++ {
		raw, err := f.gw.Call(ctx, "ListarContasPagar", params(page), "/financas/contapagar/")
		if err != nil {
			f.log.Warn().Err(err).Int("page", page).Msg("Payables page fetch failed, skipping")
			continue
		}
		var next payablesPage
		if err := json.Unmarshal(raw, &next); err != nil {
			f.log.Warn().Err(err).Int("page", page).Msg("Payables page decode failed, skipping")
			continue
		}
		if next.Payables == nil {
			f.log.Warn().Int("page", page).Msg("Payables page missing conta_pagar_cadastro, skipping")
			continue
		}
		all = append(all, next.Payables...)
	}

	f.log.Info().
		Int("payables", len(all)).
		Int("pages", first.TotalPages).
		Str("from", from).
		Str("to", to).
		Msg("Payables loaded")
	return all, nil
}

// ListMovements fetches every cash-flow movement whose payment date falls in
// the inclusive [from, to] window. Note the endpoint's distinct pagination
// field names (nPagina/nTotPaginas).
func (f *Fetcher) ListMovements(ctx context.Context, from, to string) ([]Movement, error) {
	const op = "ListMovements"

	params := func(page int) map[string]any {
		return map[string]any{
			"nPagina":       page,
			"nRegPorPagina": f.pageSize,
			"dDtPagtoDe":    from,
			"dDtPagtoAte":   to,
		}
	}

	raw, err := f.gw.Call(ctx, "ListarMovimentos", params(1), "/financas/mf/")
	if err != nil {
		return nil, fmt.Errorf("%s: first page: %w", op, err)
	}

	var first movementsPage
	if err := json.Unmarshal(raw, &first); err != nil {
		return nil, NewOmieError(op, ErrMalformedResponse, err.Error())
	}
	if first.Movements == nil {
		f.log.Warn().Int("page", 1).Msg("Movements page missing movimentos, treating as empty")
	}

	all := first.Movements
	for page := 2; page <= first.TotalPages; page++ {
		raw, err := f.gw.Call(ctx, "ListarMovimentos", params(page), "/financas/mf/")
		if err != nil {
			f.log.Warn().Err(err).Int("page", page).Msg("Movements page fetch failed, skipping")
			continue
		}
		var next movementsPage
		if err := json.Unmarshal(raw, &next); err != nil {
			f.log.Warn().Err(err).Int("page", page).Msg("Movements page decode failed, skipping")
			continue
		}
		if next.Movements == nil {
			f.log.Warn().Int("page", page).Msg("Movements page missing movimentos, skipping")
			continue
		}
		all = append(all, next.Movements...)
	}

	f.log.Info().
		Int("movements", len(all)).
		Int("pages", first.TotalPages).
		Str("from", from).
		Str("to", to).
		Msg("Movements loaded")
	return all, nil
}
