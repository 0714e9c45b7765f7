package omie

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway scripts one response (or error) per page number and records
// the order pages were requested in.
type stubGateway struct {
	responses map[int]string
	errs      map[int]error
	pages     []int
	lastCall  string
	lastPath  string
}

func (s *stubGateway) Call(ctx context.Context, call string, params any, endpoint string) (json.RawMessage, error) {
	s.lastCall = call
	s.lastPath = endpoint

	// Both pagination conventions appear, depending on the endpoint.
	bag := params.(map[string]any)
	page, ok := bag["pagina"].(int)
	if !ok {
		page, _ = bag["nPagina"].(int)
	}
	s.pages = append(s.pages, page)

	if err := s.errs[page]; err != nil {
		return nil, err
	}
	return json.RawMessage(s.responses[page]), nil
}

func TestListClientsSinglePage(t *testing.T) {
	gw := &stubGateway{responses: map[int]string{
		1: `{"pagina":1,"total_de_paginas":1,"clientes_cadastro":[
			{"codigo_cliente_omie":101,"nome_fantasia":"ACME"},
			{"codigo_cliente_omie":102,"nome_fantasia":"GLOBEX"}]}`,
	}}

	clients, err := NewFetcher(gw, 500).ListClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, int64(101), clients[0].Code)
	assert.Equal(t, "ACME", clients[0].TradeName)
	assert.Equal(t, "ListarClientes", gw.lastCall)
	assert.Equal(t, "/geral/clientes/", gw.lastPath)
}

func TestListClientsConcatenatesPagesInOrder(t *testing.T) {
	gw := &stubGateway{responses: map[int]string{
		1: `{"pagina":1,"total_de_paginas":3,"clientes_cadastro":[{"codigo_cliente_omie":1,"nome_fantasia":"A"}]}`,
		2: `{"pagina":2,"total_de_paginas":3,"clientes_cadastro":[{"codigo_cliente_omie":2,"nome_fantasia":"B"}]}`,
		3: `{"pagina":3,"total_de_paginas":3,"clientes_cadastro":[{"codigo_cliente_omie":3,"nome_fantasia":"C"}]}`,
	}}

	clients, err := NewFetcher(gw, 500).ListClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 3)
	assert.Equal(t, []int{1, 2, 3}, gw.pages, "pages must be fetched sequentially in order")
	assert.Equal(t, int64(1), clients[0].Code)
	assert.Equal(t, int64(3), clients[2].Code)
}

func TestListClientsFirstPageErrorPropagates(t *testing.T) {
	gw := &stubGateway{errs: map[int]error{1: NewOmieError("Call", ErrTimeout, "ListarClientes")}}

	_, err := NewFetcher(gw, 500).ListClients(context.Background())
	require.ErrorIs(t, err, ErrTimeout)
}

func TestListClientsLaterPageErrorSkipped(t *testing.T) {
	gw := &stubGateway{
		responses: map[int]string{
			1: `{"pagina":1,"total_de_paginas":3,"clientes_cadastro":[{"codigo_cliente_omie":1,"nome_fantasia":"A"}]}`,
			3: `{"pagina":3,"total_de_paginas":3,"clientes_cadastro":[{"codigo_cliente_omie":3,"nome_fantasia":"C"}]}`,
		},
		errs: map[int]error{2: errors.New("boom")},
	}

	clients, err := NewFetcher(gw, 500).ListClients(context.Background())
	require.NoError(t, err, "a failed later page must not fail the whole fetch")
	require.Len(t, clients, 2)
	assert.Equal(t, int64(3), clients[1].Code)
}

func TestListClientsMissingListFieldTreatedAsEmpty(t *testing.T) {
	gw := &stubGateway{responses: map[int]string{
		1: `{"pagina":1,"total_de_paginas":2}`,
		2: `{"pagina":2,"total_de_paginas":2,"clientes_cadastro":[{"codigo_cliente_omie":9,"nome_fantasia":"Z"}]}`,
	}}

	clients, err := NewFetcher(gw, 500).ListClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, int64(9), clients[0].Code)
}

func TestListClientsMalformedLaterPageSkipped(t *testing.T) {
	gw := &stubGateway{responses: map[int]string{
		1: `{"pagina":1,"total_de_paginas":3,"clientes_cadastro":[{"codigo_cliente_omie":1,"nome_fantasia":"A"}]}`,
		2: `{"pagina":2,`,
		3: `{"pagina":3,"total_de_paginas":3,"clientes_cadastro":[{"codigo_cliente_omie":3,"nome_fantasia":"C"}]}`,
	}}

	clients, err := NewFetcher(gw, 500).ListClients(context.Background())
	require.NoError(t, err, "an undecodable later page must degrade, not fail")
	require.Len(t, clients, 2)
	assert.Equal(t, int64(3), clients[1].Code)
}

func TestListPayablesFilterParams(t *testing.T) {
	var gotParams map[string]any
	gw := &recordingGateway{
		response: `{"pagina":1,"total_de_paginas":1,"conta_pagar_cadastro":[
			{"codigo_cliente_fornecedor":55,"valor_documento":120.50,"data_vencimento":"10/03/2025"}]}`,
		record: func(params map[string]any) { gotParams = params },
	}

	payables, err := NewFetcher(gw, 250).ListPayables(context.Background(), "01/03/2025", "31/03/2025")
	require.NoError(t, err)
	require.Len(t, payables, 1)
	assert.Equal(t, int64(55), payables[0].SupplierCode)
	assert.Equal(t, 120.50, payables[0].Amount)
	assert.Equal(t, "10/03/2025", payables[0].DueDate)

	assert.Equal(t, "01/03/2025", gotParams["filtrar_por_data_de"])
	assert.Equal(t, "31/03/2025", gotParams["filtrar_por_data_ate"])
	assert.Equal(t, 250, gotParams["registros_por_pagina"])
}

func TestListMovementsUsesMovementPagination(t *testing.T) {
	var paramsSeen []map[string]any
	gw := &recordingGateway{
		response: `{"nPagina":1,"nTotPaginas":2,"movimentos":[
			{"codigo_cliente_fornecedor":7,"valor":10,"data_lancamento":"02/03/2025","natureza":"P"}]}`,
		pageResponses: map[int]string{
			2: `{"nPagina":2,"nTotPaginas":2,"movimentos":[
				{"codigo_cliente_fornecedor":8,"valor":20,"data_lancamento":"03/03/2025","natureza":"P"}]}`,
		},
		record: func(params map[string]any) { paramsSeen = append(paramsSeen, params) },
	}

	movements, err := NewFetcher(gw, 500).ListMovements(context.Background(), "01/03/2025", "31/03/2025")
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, int64(7), movements[0].SupplierCode)
	assert.Equal(t, int64(8), movements[1].SupplierCode)

	require.Len(t, paramsSeen, 2)
	assert.Equal(t, 1, paramsSeen[0]["nPagina"])
	assert.Equal(t, 2, paramsSeen[1]["nPagina"])
	assert.Equal(t, "01/03/2025", paramsSeen[0]["dDtPagtoDe"])
	assert.Equal(t, "31/03/2025", paramsSeen[0]["dDtPagtoAte"])
	_, hasOldField := paramsSeen[0]["pagina"]
	assert.False(t, hasOldField, "movements endpoint must use nPagina, not pagina")
}

func TestListMovementsSecondPageFailureKeepsFirstPage(t *testing.T) {
	gw := &recordingGateway{
		response: `{"nPagina":1,"nTotPaginas":2,"movimentos":[
			{"codigo_cliente_fornecedor":7,"valor":10,"data_lancamento":"02/03/2025","natureza":"P"}]}`,
		pageErrs: map[int]error{2: NewOmieError("Call", ErrTransport, "connection reset")},
	}

	movements, err := NewFetcher(gw, 500).ListMovements(context.Background(), "01/03/2025", "31/03/2025")
	require.NoError(t, err)
	require.Len(t, movements, 1)
}

// recordingGateway answers page 1 with response and later pages from
// pageResponses/pageErrs, invoking record with each params bag.
type recordingGateway struct {
	response      string
	pageResponses map[int]string
	pageErrs      map[int]error
	record        func(params map[string]any)
}

func (g *recordingGateway) Call(ctx context.Context, call string, params any, endpoint string) (json.RawMessage, error) {
	bag := params.(map[string]any)
	if g.record != nil {
		g.record(bag)
	}
	page, ok := bag["pagina"].(int)
	if !ok {
		page, _ = bag["nPagina"].(int)
	}
	if page == 1 {
		return json.RawMessage(g.response), nil
	}
	if err := g.pageErrs[page]; err != nil {
		return nil, err
	}
	if resp, ok := g.pageResponses[page]; ok {
		return json.RawMessage(resp), nil
	}
	return nil, fmt.Errorf("unexpected page %d", page)
}
