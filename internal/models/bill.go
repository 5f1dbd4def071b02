package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Bill is one receipt-splitting session.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// Title is the human-readable name for the bill.
	Title string

	// ShareToken is an unguessable token that lets anyone holding the link
	// read the bill summary.
	ShareToken string

	// Items are the receipt's line items, in receipt order.
	Items []Item

	// People are the participants, in the order they joined.
	People []Person

	// Shares are the weighted claims people hold on items.
	Shares []ItemShare

	// Charges are the bill-level pools and split selections.
	Charges Charges

	// PayerID optionally names the person who paid the restaurant.
	PayerID string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// Item represents a single line item on a bill.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Label is the name printed on the receipt (e.g., "Pad Thai").
	Label string

	// UnitPrice is the pre-tax price of one unit.
	UnitPrice decimal.Decimal

	// Quantity is the number of units ordered, at least 1.
	Quantity int
}

// Price returns UnitPrice × Quantity.
func (i Item) Price() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Validate rejects negative prices and quantities below one.
func (i Item) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: item id required", ErrValidation)
	}
	if i.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: item %s unit price cannot be negative (got %s)", ErrValidation, i.ID, i.UnitPrice)
	}
	if i.Quantity < 1 {
		return fmt.Errorf("%w: item %s quantity must be at least 1 (got %d)", ErrValidation, i.ID, i.Quantity)
	}
	return nil
}

// Person is a participant in a bill.
type Person struct {
	ID   string
	Name string

	// IsPaid records that the person has settled up. It does not affect totals.
	IsPaid bool
}

// Validate requires an ID.
func (p Person) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: person id required", ErrValidation)
	}
	return nil
}

// ItemShare is a person's weighted claim on an item. Weights are relative to
// the sum of all weights on the same item.
type ItemShare struct {
	ItemID   string
	PersonID string
	Weight   decimal.Decimal
}

// Validate requires both references and a positive weight.
func (s ItemShare) Validate() error {
	if s.ItemID == "" || s.PersonID == "" {
		return fmt.Errorf("%w: share needs both item id and person id", ErrValidation)
	}
	if !s.Weight.IsPositive() {
		return fmt.Errorf("%w: share of item %s by %s must have a positive weight (got %s)",
			ErrValidation, s.ItemID, s.PersonID, s.Weight)
	}
	return nil
}

// Person returns the person with the given ID.
func (b *Bill) Person(id string) (Person, bool) {
	for _, p := range b.People {
		if p.ID == id {
			return p, true
		}
	}
	return Person{}, false
}

// Item returns the item with the given ID.
func (b *Bill) Item(id string) (Item, bool) {
	for _, it := range b.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// DefaultTitle creates a title from participant names.
func DefaultTitle(people []Person, now time.Time) string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("Bill - %s", now.Format("Jan 2, 2006"))
	}
	if len(names) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(names[:2], ", "),
		len(names)-2,
	)
}
