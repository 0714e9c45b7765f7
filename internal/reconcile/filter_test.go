package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"paydash/internal/omie"
)

func marchWindow(t *testing.T) Window {
	t.Helper()
	w, err := ParseWindow("01/03/2025", "31/03/2025")
	require.NoError(t, err)
	return w
}

func testNames() map[int64]string {
	return map[int64]string{
		100: "ACME LTDA",
		200: "GLOBEX SA",
	}
}

func allowRules(ids ...int64) SupplierRules {
	return SupplierRules{AllowedIDs: ids, ExpectedAmounts: map[int64]decimal.Decimal{}}
}

func TestFilterMovements(t *testing.T) {
	window := marchWindow(t)

	tests := []struct {
		name     string
		movement omie.Movement
		rules    SupplierRules
		want     int
	}{
		{
			name:     "in window and allowed",
			movement: omie.Movement{SupplierCode: 100, Amount: 50, PaymentDate: "15/03/2025", Nature: "P"},
			rules:    allowRules(100),
			want:     1,
		},
		{
			name:     "window start is inclusive",
			movement: omie.Movement{SupplierCode: 100, Amount: 50, PaymentDate: "01/03/2025", Nature: "P"},
			rules:    allowRules(100),
			want:     1,
		},
		{
			name:     "window end is inclusive",
			movement: omie.Movement{SupplierCode: 100, Amount: 50, PaymentDate: "31/03/2025", Nature: "P"},
			rules:    allowRules(100),
			want:     1,
		},
		{
			name:     "day after window excluded",
			movement: omie.Movement{SupplierCode: 100, Amount: 50, PaymentDate: "01/04/2025", Nature: "P"},
			rules:    allowRules(100),
			want:     0,
		},
		{
			name:     "day before window excluded",
			movement: omie.Movement{SupplierCode: 100, Amount: 50, PaymentDate: "28/02/2025", Nature: "P"},
			rules:    allowRules(100),
			want:     0,
		},
		{
			name:     "supplier not in allow-list excluded",
			movement: omie.Movement{SupplierCode: 300, Amount: 50, PaymentDate: "15/03/2025", Nature: "P"},
			rules:    allowRules(100, 200),
			want:     0,
		},
		{
			name:     "non-payable nature excluded",
			movement: omie.Movement{SupplierCode: 100, Amount: 50, PaymentDate: "15/03/2025", Nature: "R"},
			rules:    allowRules(100),
			want:     0,
		},
		{
			name:     "missing nature excluded",
			movement: omie.Movement{SupplierCode: 100, Amount: 50, PaymentDate: "15/03/2025"},
			rules:    allowRules(100),
			want:     0,
		},
		{
			name:     "missing date excluded",
			movement: omie.Movement{SupplierCode: 100, Amount: 50, Nature: "P"},
			rules:    allowRules(100),
			want:     0,
		},
		{
			name:     "unparseable date excluded",
			movement: omie.Movement{SupplierCode: 100, Amount: 50, PaymentDate: "2025-03-15", Nature: "P"},
			rules:    allowRules(100),
			want:     0,
		},
		{
			name:     "missing supplier code excluded",
			movement: omie.Movement{Amount: 50, PaymentDate: "15/03/2025", Nature: "P"},
			rules:    allowRules(100),
			want:     0,
		},
		{
			name:     "missing amount excluded",
			movement: omie.Movement{SupplierCode: 100, PaymentDate: "15/03/2025", Nature: "P"},
			rules:    allowRules(100),
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := FilterMovements([]omie.Movement{tt.movement}, window, tt.rules, testNames())
			assert.Len(t, items, tt.want)
		})
	}
}

func TestFilterMovementsExpectedAmountTolerance(t *testing.T) {
	window := marchWindow(t)
	rules := allowRules(100, 200)
	rules.ExpectedAmounts[100] = decimal.RequireFromString("1250.00")

	tests := []struct {
		name   string
		amount float64
		code   int64
		kept   bool
	}{
		{"exact expected amount kept", 1250.00, 100, true},
		{"one cent above kept", 1250.01, 100, true},
		{"one cent below kept", 1249.99, 100, true},
		{"two cents above excluded", 1250.02, 100, false},
		{"way off excluded", 980.00, 100, false},
		{"ungated supplier passes any amount", 42.42, 200, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			movements := []omie.Movement{{SupplierCode: tt.code, Amount: tt.amount, PaymentDate: "15/03/2025", Nature: "P"}}
			items := FilterMovements(movements, window, rules, testNames())
			if tt.kept {
				require.Len(t, items, 1)
			} else {
				assert.Empty(t, items)
			}
		})
	}
}

func TestFilterMovementsDirectoryJoin(t *testing.T) {
	window := marchWindow(t)
	movements := []omie.Movement{
		{SupplierCode: 100, Amount: 10, PaymentDate: "10/03/2025", Nature: "P"},
		{SupplierCode: 999, Amount: 20, PaymentDate: "11/03/2025", Nature: "P"},
	}

	items := FilterMovements(movements, window, allowRules(100, 999), testNames())
	require.Len(t, items, 2)
	assert.Equal(t, "ACME LTDA", items[0].Supplier)
	assert.Equal(t, UnknownSupplier, items[1].Supplier, "codes without a directory entry fall back to the placeholder")
}

func TestFilterPayablesUsesDueDateAndSkipsNatureCheck(t *testing.T) {
	window := marchWindow(t)
	payables := []omie.Payable{
		{SupplierCode: 100, Amount: 75.50, DueDate: "20/03/2025"},
		{SupplierCode: 100, Amount: 10, DueDate: "05/04/2025"},
	}

	items := FilterPayables(payables, window, allowRules(100), testNames())
	require.Len(t, items, 1)
	assert.Equal(t, 75.50, items[0].Amount)
	assert.Equal(t, "20/03/2025", items[0].Date)
}

func TestParseWindowRejectsBadInput(t *testing.T) {
	_, err := ParseWindow("2025-03-01", "31/03/2025")
	assert.Error(t, err)

	_, err = ParseWindow("31/03/2025", "01/03/2025")
	assert.Error(t, err, "end before start must be rejected")
}

func TestCurrentMonthWindow(t *testing.T) {
	now := mustParse(t, "18/03/2025")
	w := CurrentMonth(now)
	assert.Equal(t, "01/03/2025", w.StartText())
	assert.Equal(t, "18/03/2025", w.EndText())
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(DateLayout, s)
	require.NoError(t, err)
	return parsed
}
