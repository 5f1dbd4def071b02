package calculator

import (
	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of minor-unit digits totals are rounded to.
const CurrencyPlaces = 2

// RoundCurrency rounds d to cents, half away from zero.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// reconcile rounds the exact person and bill totals and makes the rounded
// figures add up: person totals + unallocated == bill total.
//
// Any residual (a cent or so per person) goes to the person with the smallest
// ID among those owing something. If nobody owes anything it is folded into
// Unallocated instead.
func reconcile(t *BillTotals, exact []decimal.Decimal, billExact decimal.Decimal) {
	t.Total = RoundCurrency(billExact)

	allocated := decimal.Zero
	sum := decimal.Zero
	for i := range t.PersonTotals {
		allocated = allocated.Add(exact[i])
		t.PersonTotals[i].Total = RoundCurrency(exact[i])
		sum = sum.Add(t.PersonTotals[i].Total)
	}
	t.Unallocated = RoundCurrency(billExact.Sub(allocated))

	residual := t.Total.Sub(t.Unallocated).Sub(sum)
	if residual.IsZero() {
		return
	}

	target := -1
	for i := range t.PersonTotals {
		if exact[i].IsZero() {
			continue
		}
		if target < 0 || t.PersonTotals[i].PersonID < t.PersonTotals[target].PersonID {
			target = i
		}
	}
	if target < 0 {
		t.Unallocated = t.Unallocated.Add(residual)
		return
	}

	t.PersonTotals[target].Total = t.PersonTotals[target].Total.Add(residual)
	t.Adjustment = residual
	t.AdjustedPersonID = t.PersonTotals[target].PersonID
}
