package billfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabby/internal/calculator"
	"github.com/mmynk/tabby/internal/models"
)

const dinnerYAML = `
title: Friday dinner
payer: alice
people:
  - name: alice
  - id: b
    name: bob
    paid: true
items:
  - id: pizza
    label: Margherita
    price: 10.10
    quantity: 2
  - label: Beer
    price: "6.5"
shares:
  - {item: pizza, person: alice}
  - {item: pizza, person: b, weight: 3}
  - {item: item-2, person: b}
charges:
  tax: 2.40
  tip: 5
  discount: -3
  tip_split: even
options:
  unassigned: exclude_from_base
`

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParse_Bill(t *testing.T) {
	f, err := Parse([]byte(dinnerYAML))
	require.NoError(t, err)

	bill, err := f.Bill()
	require.NoError(t, err)

	assert.Equal(t, "Friday dinner", bill.Title)
	assert.Equal(t, "alice", bill.PayerID)

	wantPeople := []models.Person{
		{ID: "alice", Name: "alice"},
		{ID: "b", Name: "bob", IsPaid: true},
	}
	if diff := cmp.Diff(wantPeople, bill.People); diff != "" {
		t.Errorf("people mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, bill.Items, 2)
	assert.Equal(t, "pizza", bill.Items[0].ID)
	assert.Equal(t, "10.10", bill.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, 2, bill.Items[0].Quantity)
	assert.Equal(t, "item-2", bill.Items[1].ID)
	assert.Equal(t, 1, bill.Items[1].Quantity)
	assert.True(t, bill.Items[1].UnitPrice.Equal(d("6.5")))

	require.Len(t, bill.Shares, 3)
	assert.True(t, bill.Shares[0].Weight.Equal(d("1")))
	assert.True(t, bill.Shares[1].Weight.Equal(d("3")))

	assert.True(t, bill.Charges.Tax.Equal(d("2.40")))
	assert.True(t, bill.Charges.Tip.Equal(d("5")))
	assert.True(t, bill.Charges.Discount.Equal(d("-3")))
	assert.Equal(t, models.SplitProportional, bill.Charges.TaxSplit)
	assert.Equal(t, models.SplitEven, bill.Charges.TipSplit)
	assert.Equal(t, models.SplitProportional, bill.Charges.DiscountSplit)

	opts, err := f.CalculatorOptions(calculator.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, calculator.UnassignedExcludeFromBase, opts.Unassigned)
	assert.Equal(t, calculator.ReferencesStrict, opts.References)
}

func TestParse_ComputesTotals(t *testing.T) {
	f, err := Parse([]byte(dinnerYAML))
	require.NoError(t, err)
	bill, err := f.Bill()
	require.NoError(t, err)
	opts, err := f.CalculatorOptions(calculator.DefaultOptions())
	require.NoError(t, err)

	totals, err := calculator.ComputeTotals(bill.Items, bill.Shares, bill.People, bill.Charges, opts)
	require.NoError(t, err)

	// 20.20 + 6.50 - 3 + 2.40 + 5
	assert.Equal(t, "31.10", totals.Total.StringFixed(2))
	sum := decimal.Zero
	for _, pt := range totals.PersonTotals {
		sum = sum.Add(pt.Total)
	}
	assert.True(t, sum.Add(totals.Unallocated).Equal(totals.Total))
}

func TestParse_JSON(t *testing.T) {
	data := `{
  "people": [{"name": "a"}],
  "items": [{"id": "x", "price": 0.10, "quantity": 3}],
  "shares": [{"item": "x", "person": "a"}]
}`
	f, err := Parse([]byte(data))
	require.NoError(t, err)
	bill, err := f.Bill()
	require.NoError(t, err)
	assert.Equal(t, "0.30", bill.Items[0].Price().StringFixed(2))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"unknown key", "titel: oops\n"},
		{"bad amount", "items:\n  - price: ten\n"},
		{"amount is a list", "charges:\n  tax: [1, 2]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestBill_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing price", "items:\n  - label: x\n"},
		{"negative price", "items:\n  - price: -1\n"},
		{"person without id or name", "people:\n  - paid: true\n"},
		{"zero weight", "shares:\n  - {item: a, person: b, weight: 0}\n"},
		{"negative tax", "charges:\n  tax: -1\n"},
		{"unknown split", "charges:\n  tip_split: random\n"},
		{"payer not listed", "payer: zed\npeople:\n  - name: a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.data))
			require.NoError(t, err)
			_, err = f.Bill()
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestCalculatorOptions_Invalid(t *testing.T) {
	f := &File{Options: Options{References: "loose"}}
	_, err := f.CalculatorOptions(calculator.DefaultOptions())
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bill.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dinnerYAML), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Friday dinner", f.Title)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
