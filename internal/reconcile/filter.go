package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
	"paydash/internal/omie"
)

// LineItem is the dashboard-facing reshaped record.
type LineItem struct {
	Supplier string  `json:"supplier"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date"`
}

// UnknownSupplier labels line items whose supplier code has no directory
// entry.
const UnknownSupplier = "Unknown"

// centTolerance absorbs floating-point rounding when matching a record
// against a fixed contract amount.
var centTolerance = decimal.New(1, -2)

// FilterMovements keeps cash-flow movements that are accounts-payable
// payments, fall inside the window, belong to an allowed supplier and, for
// amount-gated suppliers, match the expected contract amount within one cent.
// Records missing a supplier code, amount or parseable date are dropped.
func FilterMovements(movements []omie.Movement, window Window, rules SupplierRules, names map[int64]string) []LineItem {
	allowed := rules.allowSet()
	items := make([]LineItem, 0, len(movements))
	for _, mov := range movements {
		if !mov.IsPayable() {
			continue
		}
		if !keep(mov.SupplierCode, mov.Amount, mov.PaymentDate, window, allowed, rules.ExpectedAmounts) {
			continue
		}
		items = append(items, toLineItem(mov.SupplierCode, mov.Amount, mov.PaymentDate, names))
	}
	return items
}

// FilterPayables applies the same rules to the dedicated accounts-payable
// endpoint, which needs no classification check and keys on the due date.
func FilterPayables(payables []omie.Payable, window Window, rules SupplierRules, names map[int64]string) []LineItem {
	allowed := rules.allowSet()
	items := make([]LineItem, 0, len(payables))
	for _, p := range payables {
		if !keep(p.SupplierCode, p.Amount, p.DueDate, window, allowed, rules.ExpectedAmounts) {
			continue
		}
		items = append(items, toLineItem(p.SupplierCode, p.Amount, p.DueDate, names))
	}
	return items
}

func keep(code int64, amount float64, date string, window Window, allowed map[int64]struct{}, expected map[int64]decimal.Decimal) bool {
	if code == 0 || amount == 0 {
		return false
	}
	if _, ok := allowed[code]; !ok {
		return false
	}
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	if !window.Contains(parsed) {
		return false
	}
	if want, ok := expected[code]; ok {
		diff := decimal.NewFromFloat(amount).Sub(want).Abs()
		if diff.GreaterThan(centTolerance) {
			return false
		}
	}
	return true
}

func toLineItem(code int64, amount float64, date string, names map[int64]string) LineItem {
	name := names[code]
	if name == "" {
		name = UnknownSupplier
	}
	return LineItem{Supplier: name, Amount: amount, Date: date}
}
