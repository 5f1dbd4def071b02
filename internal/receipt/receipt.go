// Package receipt turns extracted receipt data into validated bill records.
//
// Extraction services hand receipts over in two shapes: wrapped in a
// {"parsed": {...}} envelope, or flat. Decode recognizes both, validates the
// result once, and returns typed models so nothing downstream sees raw input.
package receipt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tabby/internal/models"
)

// Kind tells which shape a payload arrived in.
type Kind int

const (
	KindFlat Kind = iota
	KindParsed
)

func (k Kind) String() string {
	if k == KindParsed {
		return "parsed"
	}
	return "flat"
}

// LineItem is one extracted line. Any one of UnitPrice, Price or TotalPrice
// may carry the amount; Price and TotalPrice are line totals.
type LineItem struct {
	Name        string           `json:"name"`
	Label       string           `json:"label"`
	Description string           `json:"description"`
	Quantity    *int             `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Price       *decimal.Decimal `json:"price"`
	TotalPrice  *decimal.Decimal `json:"total_price"`
}

// Fields are the receipt values common to both shapes.
type Fields struct {
	Items      []LineItem       `json:"items"`
	Subtotal   *decimal.Decimal `json:"subtotal"`
	Tax        *decimal.Decimal `json:"tax"`
	SalesTax   *decimal.Decimal `json:"sales_tax"`
	Tip        *decimal.Decimal `json:"tip"`
	Discount   *decimal.Decimal `json:"discount"`
	ServiceFee *decimal.Decimal `json:"service_fee"`
}

// Payload is a decoded receipt in either shape.
type Payload struct {
	Kind   Kind
	Fields Fields
}

// UnmarshalJSON detects the envelope and decodes the inner fields.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: receipt must be a JSON object: %v", models.ErrValidation, err)
	}
	if probe == nil {
		return fmt.Errorf("%w: receipt is empty", models.ErrValidation)
	}
	if parsed, ok := probe["parsed"]; ok && !bytes.Equal(bytes.TrimSpace(parsed), []byte("null")) {
		p.Kind = KindParsed
		data = parsed
	} else {
		p.Kind = KindFlat
	}
	if err := json.Unmarshal(data, &p.Fields); err != nil {
		return fmt.Errorf("%w: malformed %s receipt: %v", models.ErrValidation, p.Kind, err)
	}
	return nil
}

// Draft is a validated receipt ready to become a bill.
type Draft struct {
	Kind    Kind
	Items   []models.Item
	Charges models.Charges

	// SubtotalGap is the printed subtotal minus the sum of item prices. It is
	// zero when the receipt printed no subtotal or the items add up.
	SubtotalGap decimal.Decimal
}

// Decode parses raw JSON in either shape and validates it.
func Decode(raw []byte) (*Draft, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p.Draft()
}

// Draft converts the payload into validated items and charges.
func (p Payload) Draft() (*Draft, error) {
	f := p.Fields
	draft := &Draft{
		Kind:        p.Kind,
		Items:       make([]models.Item, 0, len(f.Items)),
		Charges:     models.DefaultCharges(),
		SubtotalGap: decimal.Zero,
	}

	sum := decimal.Zero
	for i, line := range f.Items {
		item, err := line.toItem(i)
		if err != nil {
			return nil, err
		}
		sum = sum.Add(item.Price())
		draft.Items = append(draft.Items, item)
	}

	tax := f.Tax
	if tax == nil {
		tax = f.SalesTax
	}
	draft.Charges.Tax = valueOrZero(tax)
	draft.Charges.Tip = valueOrZero(f.Tip)
	draft.Charges.Discount = valueOrZero(f.Discount)
	draft.Charges.ServiceFee = valueOrZero(f.ServiceFee)
	if err := draft.Charges.Validate(); err != nil {
		return nil, err
	}

	if f.Subtotal != nil {
		draft.SubtotalGap = f.Subtotal.Sub(sum)
	}
	return draft, nil
}

func (l LineItem) toItem(index int) (models.Item, error) {
	label := firstNonEmpty(l.Label, l.Name, l.Description)
	if label == "" {
		label = fmt.Sprintf("Item %d", index+1)
	}

	qty := 1
	if l.Quantity != nil {
		qty = *l.Quantity
	}
	if qty < 1 {
		return models.Item{}, fmt.Errorf("%w: line %d (%s) has quantity %d", models.ErrValidation, index+1, label, qty)
	}

	item := models.Item{ID: uuid.New().String(), Label: label, Quantity: qty}
	switch {
	case l.UnitPrice != nil:
		item.UnitPrice = *l.UnitPrice
	case l.TotalPrice != nil || l.Price != nil:
		total := l.TotalPrice
		if total == nil {
			total = l.Price
		}
		q := decimal.NewFromInt(int64(qty))
		unit := total.Div(q)
		if unit.Mul(q).Equal(*total) {
			item.UnitPrice = unit
		} else {
			// Keep the printed line total exact rather than a repeating unit price.
			item.Label = fmt.Sprintf("%d x %s", qty, label)
			item.Quantity = 1
			item.UnitPrice = *total
		}
	default:
		return models.Item{}, fmt.Errorf("%w: line %d (%s) has no price", models.ErrValidation, index+1, label)
	}

	if err := item.Validate(); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
