// Package billfile reads bills written by hand in YAML or JSON.
//
//	title: Friday dinner
//	payer: alice
//	people:
//	  - name: alice
//	  - name: bob
//	items:
//	  - id: pizza
//	    label: Margherita
//	    price: 10.00
//	    quantity: 2
//	shares:
//	  - {item: pizza, person: alice}
//	  - {item: pizza, person: bob, weight: 3}
//	charges:
//	  tax: 2.40
//	  tip: 5
//	  tip_split: even
//	options:
//	  unassigned: exclude_from_base
//
// Amounts keep the digits they were written with; they never pass through a float.
package billfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/tabby/internal/calculator"
	"github.com/mmynk/tabby/internal/models"
)

// Amount is a decimal read from the scalar's literal text.
type Amount struct {
	decimal.Decimal
	Set bool
}

// UnmarshalYAML parses the scalar text exactly.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: amount must be a number", models.ErrValidation, node.Line)
	}
	if node.Tag == "!!null" {
		return nil
	}
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("%w: line %d: bad amount %q", models.ErrValidation, node.Line, node.Value)
	}
	a.Decimal = d
	a.Set = true
	return nil
}

// Or returns the amount, or def when it was not written.
func (a Amount) Or(def decimal.Decimal) decimal.Decimal {
	if !a.Set {
		return def
	}
	return a.Decimal
}

// File is the on-disk shape of a bill.
type File struct {
	Title   string   `yaml:"title"`
	Payer   string   `yaml:"payer"`
	People  []Person `yaml:"people"`
	Items   []Item   `yaml:"items"`
	Shares  []Share  `yaml:"shares"`
	Charges Charges  `yaml:"charges"`
	Options Options  `yaml:"options"`
}

// Person defaults its ID to its name.
type Person struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Paid bool   `yaml:"paid"`
}

// Item defaults its ID to item-N (1-based) and its quantity to 1.
type Item struct {
	ID       string `yaml:"id"`
	Label    string `yaml:"label"`
	Price    Amount `yaml:"price"`
	Quantity int    `yaml:"quantity"`
}

// Share defaults its weight to 1.
type Share struct {
	Item   string `yaml:"item"`
	Person string `yaml:"person"`
	Weight Amount `yaml:"weight"`
}

type Charges struct {
	Tax        Amount `yaml:"tax"`
	Tip        Amount `yaml:"tip"`
	Discount   Amount `yaml:"discount"`
	ServiceFee Amount `yaml:"service_fee"`

	TaxSplit        string `yaml:"tax_split"`
	TipSplit        string `yaml:"tip_split"`
	DiscountSplit   string `yaml:"discount_split"`
	ServiceFeeSplit string `yaml:"service_fee_split"`

	IncludeZeroItemPeople bool `yaml:"include_zero_item_people"`
}

type Options struct {
	Unassigned string `yaml:"unassigned"`
	References string `yaml:"references"`
}

// Load reads and parses a bill file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes YAML or JSON. Unknown keys are rejected so typos do not pass silently.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: bill file is empty", models.ErrValidation)
		}
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	return &f, nil
}

// Bill converts the file into a bill. Share references are not checked here;
// ComputeTotals does that according to the reference mode.
func (f *File) Bill() (*models.Bill, error) {
	bill := &models.Bill{
		Title:   f.Title,
		PayerID: f.Payer,
	}

	for _, p := range f.People {
		id := p.ID
		if id == "" {
			id = p.Name
		}
		person := models.Person{ID: id, Name: p.Name, IsPaid: p.Paid}
		if err := person.Validate(); err != nil {
			return nil, err
		}
		bill.People = append(bill.People, person)
	}

	for i, it := range f.Items {
		id := it.ID
		if id == "" {
			id = "item-" + strconv.Itoa(i+1)
		}
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		if !it.Price.Set {
			return nil, fmt.Errorf("%w: item %s has no price", models.ErrValidation, id)
		}
		item := models.Item{ID: id, Label: it.Label, UnitPrice: it.Price.Decimal, Quantity: qty}
		if err := item.Validate(); err != nil {
			return nil, err
		}
		bill.Items = append(bill.Items, item)
	}

	for _, sh := range f.Shares {
		share := models.ItemShare{
			ItemID:   sh.Item,
			PersonID: sh.Person,
			Weight:   sh.Weight.Or(decimal.NewFromInt(1)),
		}
		if err := share.Validate(); err != nil {
			return nil, err
		}
		bill.Shares = append(bill.Shares, share)
	}

	charges, err := f.Charges.toModel()
	if err != nil {
		return nil, err
	}
	bill.Charges = charges

	if bill.PayerID != "" {
		if _, ok := bill.Person(bill.PayerID); !ok {
			return nil, fmt.Errorf("%w: payer %q is not one of the people", models.ErrValidation, bill.PayerID)
		}
	}
	return bill, nil
}

func (c Charges) toModel() (models.Charges, error) {
	out := models.Charges{
		Tax:                   c.Tax.Or(decimal.Zero),
		Tip:                   c.Tip.Or(decimal.Zero),
		Discount:              c.Discount.Or(decimal.Zero),
		ServiceFee:            c.ServiceFee.Or(decimal.Zero),
		IncludeZeroItemPeople: c.IncludeZeroItemPeople,
	}
	splits := []struct {
		name string
		in   string
		out  *models.SplitMethod
	}{
		{"tax_split", c.TaxSplit, &out.TaxSplit},
		{"tip_split", c.TipSplit, &out.TipSplit},
		{"discount_split", c.DiscountSplit, &out.DiscountSplit},
		{"service_fee_split", c.ServiceFeeSplit, &out.ServiceFeeSplit},
	}
	for _, s := range splits {
		if s.in == "" {
			*s.out = models.SplitProportional
			continue
		}
		m, err := models.ParseSplitMethod(s.in)
		if err != nil {
			return models.Charges{}, fmt.Errorf("%s: %w", s.name, err)
		}
		*s.out = m
	}
	return out, out.Validate()
}

// CalculatorOptions merges the file's options over defaults.
func (f *File) CalculatorOptions(defaults calculator.Options) (calculator.Options, error) {
	opts := defaults
	if f.Options.Unassigned != "" {
		p, err := calculator.ParseUnassignedPolicy(f.Options.Unassigned)
		if err != nil {
			return opts, err
		}
		opts.Unassigned = p
	}
	if f.Options.References != "" {
		m, err := calculator.ParseReferenceMode(f.Options.References)
		if err != nil {
			return opts, err
		}
		opts.References = m
	}
	return opts, nil
}
