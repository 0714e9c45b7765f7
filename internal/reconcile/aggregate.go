package reconcile

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SupplierTotal is one row of the per-supplier breakdown.
type SupplierTotal struct {
	Supplier string  `json:"supplier"`
	Total    float64 `json:"total"`
}

// Summary is the dashboard response payload.
type Summary struct {
	TotalCount  int             `json:"totalCount"`
	TotalAmount float64         `json:"totalAmount"`
	Average     float64         `json:"average"`
	Items       []LineItem      `json:"items"`
	BySupplier  []SupplierTotal `json:"bySupplier"`
}

// Aggregate computes totals, the per-supplier breakdown sorted descending by
// amount, and the line items sorted descending by date. Equal dates keep
// their incoming relative order. Sums are carried in decimal so the reported
// total is the exact sum of the items.
func Aggregate(items []LineItem) Summary {
	total := decimal.Zero
	perSupplier := make(map[string]decimal.Decimal)
	for _, it := range items {
		amount := decimal.NewFromFloat(it.Amount)
		total = total.Add(amount)
		perSupplier[it.Supplier] = perSupplier[it.Supplier].Add(amount)
	}

	sorted := make([]LineItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return itemDate(sorted[i]).After(itemDate(sorted[j]))
	})

	breakdown := make([]SupplierTotal, 0, len(perSupplier))
	for supplier, sum := range perSupplier {
		breakdown = append(breakdown, SupplierTotal{Supplier: supplier, Total: sum.InexactFloat64()})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Total != breakdown[j].Total {
			return breakdown[i].Total > breakdown[j].Total
		}
		return breakdown[i].Supplier < breakdown[j].Supplier
	})

	average := 0.0
	if len(items) > 0 {
		average = total.Div(decimal.NewFromInt(int64(len(items)))).InexactFloat64()
	}

	return Summary{
		TotalCount:  len(items),
		TotalAmount: total.InexactFloat64(),
		Average:     average,
		Items:       sorted,
		BySupplier:  breakdown,
	}
}

// itemDate parses a line item's date for ordering. Items reach aggregation
// only after the filter parsed their dates, so a failure here cannot happen
// for pipeline output; zero time keeps hand-built items ordered last.
func itemDate(it LineItem) time.Time {
	t, err := time.Parse(DateLayout, it.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}
