// Package reconcile filters raw Omie records down to the dashboard's business
// rules and aggregates them into the response payload.
package reconcile

import (
	"github.com/shopspring/decimal"
)

// SupplierRules is the consolidated business-rule table: which supplier codes
// the dashboard reports on, their display names for the supplier listing, and
// fixed expected contract amounts for amount-gated suppliers.
//
// The rules are data, loaded once at startup and passed into the filter, so
// adding a supplier or a contract amount is a configuration change.
type SupplierRules struct {
	// AllowedIDs is the supplier allow-list applied when a query names no
	// suppliers of its own.
	AllowedIDs []int64

	// Names maps supplier codes to display names for the supplier listing
	// endpoint. Line items take their names from the ERP directory instead.
	Names map[int64]string

	// ExpectedAmounts gates the listed suppliers to records whose amount
	// matches the fixed contract value within one cent. Suppliers absent
	// from the table pass on any amount.
	ExpectedAmounts map[int64]decimal.Decimal
}

// DefaultRules returns the built-in IT-supplier rule set.
func DefaultRules() SupplierRules {
	return SupplierRules{
		AllowedIDs: []int64{4807594928, 4807594778, 5202017644},
		Names: map[int64]string{
			4807594928: "RIT SOLUCOES EM TECNOLOGIA DA INFORMACAO LTDA",
			4807594778: "BRFIBRA TELECOMUNICACOES LTDA",
			5202017644: "WORLDNET",
			4807594893: "MUNDIVOX COMMUNICATIONS LTDA",
		},
		ExpectedAmounts: map[int64]decimal.Decimal{},
	}
}

// WithAllowedIDs returns a copy of the rules with the allow-list replaced.
// An empty override keeps the configured list.
func (r SupplierRules) WithAllowedIDs(ids []int64) SupplierRules {
	if len(ids) == 0 {
		return r
	}
	out := r
	out.AllowedIDs = ids
	return out
}

func (r SupplierRules) allowSet() map[int64]struct{} {
	set := make(map[int64]struct{}, len(r.AllowedIDs))
	for _, id := range r.AllowedIDs {
		set[id] = struct{}{}
	}
	return set
}
