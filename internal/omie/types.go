package omie

// Record shapes mirror the Omie wire contract field for field. The API is not
// consistent across endpoints (pagina vs nPagina, valor vs valor_documento),
// so the JSON tags here must stay per-endpoint and must not be unified.

// Client is one entry in the customer/vendor directory.
type Client struct {
	Code      int64  `json:"codigo_cliente_omie"`
	TradeName string `json:"nome_fantasia"`
}

// Payable is an accounts-payable record from the dedicated contapagar
// endpoint, keyed by due date.
type Payable struct {
	SupplierCode int64   `json:"codigo_cliente_fornecedor"`
	Amount       float64 `json:"valor_documento"`
	DueDate      string  `json:"data_vencimento"`
	Note         string  `json:"observacao"`
}

// Movement is a generic cash-flow record from the movements endpoint, keyed
// by payment date and tagged with a nature classification.
type Movement struct {
	SupplierCode int64   `json:"codigo_cliente_fornecedor"`
	Amount       float64 `json:"valor"`
	PaymentDate  string  `json:"data_lancamento"`
	Nature       string  `json:"natureza"`
}

// NaturePayable is the nature tag marking an accounts-payable movement.
// Inflows and other movement types carry different tags and are excluded
// from the dashboard.
const NaturePayable = "P"

// IsPayable reports whether the movement is an accounts-payable payment.
func (m Movement) IsPayable() bool {
	return m.Nature == NaturePayable
}
