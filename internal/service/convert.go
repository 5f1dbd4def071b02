package service

import (
	"fmt"

	"github.com/mmynk/tabby/internal/calculator"
	"github.com/mmynk/tabby/internal/models"
	"github.com/mmynk/tabby/pkg/api"
)

func itemsFromAPI(in []api.Item) []models.Item {
	items := make([]models.Item, len(in))
	for i, it := range in {
		items[i] = itemFromAPI(it)
	}
	return items
}

func itemFromAPI(it api.Item) models.Item {
	return models.Item{
		ID:        it.ID,
		Label:     it.Label,
		UnitPrice: it.UnitPrice,
		Quantity:  it.Quantity,
	}
}

func peopleFromAPI(in []api.Person) []models.Person {
	people := make([]models.Person, len(in))
	for i, p := range in {
		people[i] = models.Person{ID: p.ID, Name: p.Name, IsPaid: p.IsPaid}
	}
	return people
}

func sharesFromAPI(in []api.Share) []models.ItemShare {
	shares := make([]models.ItemShare, len(in))
	for i, sh := range in {
		shares[i] = shareFromAPI(sh)
	}
	return shares
}

func shareFromAPI(sh api.Share) models.ItemShare {
	return models.ItemShare{ItemID: sh.ItemID, PersonID: sh.PersonID, Weight: sh.Weight}
}

// chargesFromAPI parses split names. Any split left empty is proportional.
func chargesFromAPI(in api.Charges) (models.Charges, error) {
	c := models.Charges{
		Tax:                   in.Tax,
		Tip:                   in.Tip,
		Discount:              in.Discount,
		ServiceFee:            in.ServiceFee,
		IncludeZeroItemPeople: in.IncludeZeroItemPeople,
	}
	splits := []struct {
		name string
		raw  string
		dst  *models.SplitMethod
	}{
		{"tax_split", in.TaxSplit, &c.TaxSplit},
		{"tip_split", in.TipSplit, &c.TipSplit},
		{"discount_split", in.DiscountSplit, &c.DiscountSplit},
		{"service_fee_split", in.ServiceFeeSplit, &c.ServiceFeeSplit},
	}
	for _, s := range splits {
		if s.raw == "" {
			*s.dst = models.SplitProportional
			continue
		}
		m, err := models.ParseSplitMethod(s.raw)
		if err != nil {
			return models.Charges{}, fmt.Errorf("%s: %w", s.name, err)
		}
		*s.dst = m
	}
	if err := c.Validate(); err != nil {
		return models.Charges{}, err
	}
	return c, nil
}

// optionsFromAPI overlays the request's choices on the server defaults.
func optionsFromAPI(in api.Options, defaults calculator.Options) (calculator.Options, error) {
	opts := defaults
	if in.UnassignedPolicy != "" {
		p, err := calculator.ParseUnassignedPolicy(in.UnassignedPolicy)
		if err != nil {
			return calculator.Options{}, err
		}
		opts.Unassigned = p
	}
	if in.ReferenceMode != "" {
		m, err := calculator.ParseReferenceMode(in.ReferenceMode)
		if err != nil {
			return calculator.Options{}, err
		}
		opts.References = m
	}
	return opts, nil
}

func billToAPI(b *models.Bill) *api.Bill {
	out := &api.Bill{
		ID:         b.ID,
		Title:      b.Title,
		ShareToken: b.ShareToken,
		PayerID:    b.PayerID,
		Items:      make([]api.Item, len(b.Items)),
		People:     make([]api.Person, len(b.People)),
		Shares:     make([]api.Share, len(b.Shares)),
		Charges: api.Charges{
			Tax:                   b.Charges.Tax,
			Tip:                   b.Charges.Tip,
			Discount:              b.Charges.Discount,
			ServiceFee:            b.Charges.ServiceFee,
			TaxSplit:              string(b.Charges.TaxSplit),
			TipSplit:              string(b.Charges.TipSplit),
			DiscountSplit:         string(b.Charges.DiscountSplit.OrProportional()),
			ServiceFeeSplit:       string(b.Charges.ServiceFeeSplit.OrProportional()),
			IncludeZeroItemPeople: b.Charges.IncludeZeroItemPeople,
		},
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	for i, it := range b.Items {
		out.Items[i] = api.Item{ID: it.ID, Label: it.Label, UnitPrice: it.UnitPrice, Quantity: it.Quantity}
	}
	for i, p := range b.People {
		out.People[i] = api.Person{ID: p.ID, Name: p.Name, IsPaid: p.IsPaid}
	}
	for i, sh := range b.Shares {
		out.Shares[i] = api.Share{ItemID: sh.ItemID, PersonID: sh.PersonID, Weight: sh.Weight}
	}
	return out
}

// TotalsToAPI converts engine totals to their wire form.
func TotalsToAPI(t *calculator.BillTotals) *api.Totals {
	if t == nil {
		return nil
	}
	out := &api.Totals{
		Subtotal:         t.Subtotal,
		Tax:              t.Tax,
		Tip:              t.Tip,
		Discount:         t.Discount,
		ServiceFee:       t.ServiceFee,
		Total:            t.Total,
		Unallocated:      t.Unallocated,
		Adjustment:       t.Adjustment,
		AdjustedPersonID: t.AdjustedPersonID,
		IgnoredShares:    t.IgnoredShares,
		PersonTotals:     make([]api.PersonTotal, len(t.PersonTotals)),
	}
	for i, pt := range t.PersonTotals {
		items := make([]api.PersonItem, len(pt.Items))
		for j, it := range pt.Items {
			items[j] = api.PersonItem{ItemID: it.ItemID, Label: it.Label, Weight: it.Weight, Amount: it.Amount}
		}
		out.PersonTotals[i] = api.PersonTotal{
			PersonID:        pt.PersonID,
			Name:            pt.Name,
			Subtotal:        pt.Subtotal,
			DiscountShare:   pt.DiscountShare,
			ServiceFeeShare: pt.ServiceFeeShare,
			TaxShare:        pt.TaxShare,
			TipShare:        pt.TipShare,
			Total:           pt.Total,
			Items:           items,
		}
	}
	return out
}

// SummaryToAPI converts a summary to its wire form, including the text rendering.
func SummaryToAPI(s *calculator.Summary) *api.Summary {
	out := &api.Summary{
		Title:       s.Title,
		Total:       s.Total,
		Unallocated: s.Unallocated,
		Paid:        s.Paid,
		Outstanding: s.Outstanding,
		Lines:       make([]api.SummaryLine, len(s.Lines)),
		Debts:       make([]api.Debt, len(s.Debts)),
		Text:        s.Text(),
	}
	for i, l := range s.Lines {
		out.Lines[i] = api.SummaryLine{PersonID: l.PersonID, Name: l.Name, Total: l.Total, IsPaid: l.Paid}
	}
	for i, d := range s.Debts {
		out.Debts[i] = api.Debt{From: d.From, To: d.To, Amount: d.Amount}
	}
	return out
}
