package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tabby/internal/models"
)

// PersonItem is one person's slice of one item.
type PersonItem struct {
	ItemID string
	Label  string
	Weight decimal.Decimal
	Amount decimal.Decimal
}

// PersonTotal is one person's calculated share of a bill.
// Component fields keep full precision; Total is rounded to cents.
type PersonTotal struct {
	PersonID string
	Name     string

	// Subtotal is the sum of this person's item contributions.
	Subtotal decimal.Decimal

	DiscountShare   decimal.Decimal
	ServiceFeeShare decimal.Decimal
	TaxShare        decimal.Decimal
	TipShare        decimal.Decimal

	// Total = Subtotal - DiscountShare + ServiceFeeShare + TaxShare + TipShare,
	// rounded, plus any reconciliation adjustment.
	Total decimal.Decimal

	// Items lists the items this person claimed, in receipt order.
	Items []PersonItem
}

// BillTotals is the breakdown of a whole bill.
type BillTotals struct {
	// Subtotal is the sum of all item prices, assigned or not.
	Subtotal decimal.Decimal

	Tax        decimal.Decimal
	Tip        decimal.Decimal
	Discount   decimal.Decimal
	ServiceFee decimal.Decimal

	// Total = Subtotal - Discount + ServiceFee + Tax + Tip, rounded to cents.
	Total decimal.Decimal

	// Unallocated is the rounded part of Total that no person carries:
	// unassigned items and the pool slices that follow them.
	Unallocated decimal.Decimal

	// Adjustment is the rounding residual added to AdjustedPersonID's total so
	// that person totals plus Unallocated equal Total exactly.
	Adjustment       decimal.Decimal
	AdjustedPersonID string

	// IgnoredShares counts dangling shares dropped in lenient mode.
	IgnoredShares int

	// PersonTotals follows the order of the people passed in.
	PersonTotals []PersonTotal
}

// Person returns the totals for the given person ID.
func (t *BillTotals) Person(id string) (PersonTotal, bool) {
	for _, pt := range t.PersonTotals {
		if pt.PersonID == id {
			return pt, true
		}
	}
	return PersonTotal{}, false
}

// ComputeTotals splits a bill's items and pools across people.
//
// Each item's price is divided among its shares in proportion to their
// weights. Pools (tax, tip, discount, service fee) are then allocated either
// in proportion to each person's subtotal or evenly, per charges. Arithmetic is
// exact up to decimal.DivisionPrecision; only totals are rounded, see reconcile.
//
// The function is pure: identical inputs always give identical output.
func ComputeTotals(items []models.Item, shares []models.ItemShare, people []models.Person, charges models.Charges, opts Options) (*BillTotals, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := charges.Validate(); err != nil {
		return nil, err
	}

	itemIndex := make(map[string]int, len(items))
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		if _, dup := itemIndex[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %q", models.ErrValidation, item.ID)
		}
		itemIndex[item.ID] = i
	}

	personIndex := make(map[string]int, len(people))
	for i, p := range people {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := personIndex[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate person id %q", models.ErrValidation, p.ID)
		}
		personIndex[p.ID] = i
	}

	discount := charges.DiscountAmount()
	if len(people) == 0 {
		if len(items) > 0 {
			return nil, fmt.Errorf("%w: %d items but no people", ErrEmptyParticipants, len(items))
		}
		for _, pool := range []decimal.Decimal{charges.Tax, charges.Tip, discount, charges.ServiceFee} {
			if !pool.IsZero() {
				return nil, fmt.Errorf("%w: charges present but no people", ErrEmptyParticipants)
			}
		}
	}

	sharesByItem := make([][]models.ItemShare, len(items))
	ignored := 0
	for _, s := range shares {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		ii, itemOK := itemIndex[s.ItemID]
		_, personOK := personIndex[s.PersonID]
		if !itemOK || !personOK {
			if opts.References == ReferencesLenient {
				ignored++
				continue
			}
			if !itemOK {
				return nil, fmt.Errorf("%w: share references unknown item %q", ErrReference, s.ItemID)
			}
			return nil, fmt.Errorf("%w: share references unknown person %q", ErrReference, s.PersonID)
		}
		sharesByItem[ii] = append(sharesByItem[ii], s)
	}

	result := &BillTotals{
		Subtotal:      decimal.Zero,
		Tax:           charges.Tax,
		Tip:           charges.Tip,
		Discount:      discount,
		ServiceFee:    charges.ServiceFee,
		Adjustment:    decimal.Zero,
		IgnoredShares: ignored,
		PersonTotals:  make([]PersonTotal, len(people)),
	}
	for i, p := range people {
		result.PersonTotals[i] = PersonTotal{
			PersonID: p.ID,
			Name:     p.Name,
			Subtotal: decimal.Zero,
		}
	}

	assigned := decimal.Zero
	for i, item := range items {
		price := item.Price()
		result.Subtotal = result.Subtotal.Add(price)

		totalWeight := decimal.Zero
		for _, s := range sharesByItem[i] {
			totalWeight = totalWeight.Add(s.Weight)
		}
		if totalWeight.IsZero() {
			continue
		}
		assigned = assigned.Add(price)

		for _, s := range sharesByItem[i] {
			// Multiply first so equal ratios give bit-identical results.
			amount := price.Mul(s.Weight).Div(totalWeight)
			pt := &result.PersonTotals[personIndex[s.PersonID]]
			pt.Subtotal = pt.Subtotal.Add(amount)
			pt.Items = append(pt.Items, PersonItem{
				ItemID: item.ID,
				Label:  item.Label,
				Weight: s.Weight,
				Amount: amount,
			})
		}
	}

	base := result.Subtotal
	if opts.Unassigned == UnassignedExcludeFromBase {
		base = assigned
	}

	subtotals := make([]decimal.Decimal, len(people))
	for i := range result.PersonTotals {
		subtotals[i] = result.PersonTotals[i].Subtotal
	}
	include := charges.IncludeZeroItemPeople
	taxShares := allocate(charges.Tax, charges.TaxSplit, subtotals, base, include)
	tipShares := allocate(charges.Tip, charges.TipSplit, subtotals, base, include)
	discountShares := allocate(discount, charges.DiscountSplit.OrProportional(), subtotals, base, include)
	feeShares := allocate(charges.ServiceFee, charges.ServiceFeeSplit.OrProportional(), subtotals, base, include)

	exact := make([]decimal.Decimal, len(people))
	for i := range result.PersonTotals {
		pt := &result.PersonTotals[i]
		pt.TaxShare = taxShares[i]
		pt.TipShare = tipShares[i]
		pt.DiscountShare = discountShares[i]
		pt.ServiceFeeShare = feeShares[i]
		exact[i] = pt.Subtotal.
			Sub(pt.DiscountShare).
			Add(pt.ServiceFeeShare).
			Add(pt.TaxShare).
			Add(pt.TipShare)
	}

	billExact := result.Subtotal.
		Sub(discount).
		Add(charges.ServiceFee).
		Add(charges.Tax).
		Add(charges.Tip)

	reconcile(result, exact, billExact)
	return result, nil
}

// UnclaimedTotals is the breakdown of a bill nobody has joined yet: the whole
// total is unallocated. Charges are assumed valid.
func UnclaimedTotals(items []models.Item, charges models.Charges) *BillTotals {
	result := &BillTotals{
		Subtotal:     decimal.Zero,
		Tax:          charges.Tax,
		Tip:          charges.Tip,
		Discount:     charges.DiscountAmount(),
		ServiceFee:   charges.ServiceFee,
		Adjustment:   decimal.Zero,
		PersonTotals: []PersonTotal{},
	}
	for _, item := range items {
		result.Subtotal = result.Subtotal.Add(item.Price())
	}
	result.Total = RoundCurrency(result.Subtotal.
		Sub(result.Discount).
		Add(result.ServiceFee).
		Add(result.Tax).
		Add(result.Tip))
	result.Unallocated = result.Total
	return result
}

// allocate divides pool across people. Proportional shares are
// (pool / base) × subtotal; even shares are pool / eligible. A pool with no
// base or no eligible people is left entirely unallocated.
func allocate(pool decimal.Decimal, method models.SplitMethod, subtotals []decimal.Decimal, base decimal.Decimal, includeZero bool) []decimal.Decimal {
	out := make([]decimal.Decimal, len(subtotals))
	for i := range out {
		out[i] = decimal.Zero
	}
	if pool.IsZero() {
		return out
	}

	switch method {
	case models.SplitEven:
		eligible := 0
		for _, s := range subtotals {
			if includeZero || s.IsPositive() {
				eligible++
			}
		}
		if eligible == 0 {
			return out
		}
		part := pool.Div(decimal.NewFromInt(int64(eligible)))
		for i, s := range subtotals {
			if includeZero || s.IsPositive() {
				out[i] = part
			}
		}
	default:
		if !base.IsPositive() {
			return out
		}
		// One factor for everyone so shares keep the exact ratio of subtotals.
		factor := pool.Div(base)
		for i, s := range subtotals {
			out[i] = factor.Mul(s)
		}
	}
	return out
}
