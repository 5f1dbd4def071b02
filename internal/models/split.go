package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SplitMethod selects how a bill-level pool is divided among people.
type SplitMethod string

const (
	// SplitProportional weights each person's share by their item subtotal.
	SplitProportional SplitMethod = "proportional"
	// SplitEven divides the pool into equal parts among eligible people.
	SplitEven SplitMethod = "even"
)

// ParseSplitMethod parses a split method name, case-insensitively.
func ParseSplitMethod(s string) (SplitMethod, error) {
	m := SplitMethod(strings.ToLower(strings.TrimSpace(s)))
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// Validate fails unless m is one of the known split methods.
func (m SplitMethod) Validate() error {
	switch m {
	case SplitProportional, SplitEven:
		return nil
	}
	return fmt.Errorf("%w: unknown split method %q", ErrValidation, string(m))
}

// OrProportional returns m, or SplitProportional when m is unset.
func (m SplitMethod) OrProportional() SplitMethod {
	if m == "" {
		return SplitProportional
	}
	return m
}

// Charges holds the bill-level pools and the method used to split each one.
type Charges struct {
	// Tax is the sales tax printed on the receipt.
	Tax decimal.Decimal

	// Tip is the gratuity added by the group.
	Tip decimal.Decimal

	// Discount is subtracted from the bill. Receipts print it either as a
	// positive amount or as a negative line, so only its magnitude is used.
	Discount decimal.Decimal

	// ServiceFee is a flat restaurant fee (delivery, large party, etc).
	ServiceFee decimal.Decimal

	// TaxSplit and TipSplit are required.
	TaxSplit SplitMethod
	TipSplit SplitMethod

	// DiscountSplit and ServiceFeeSplit default to proportional when unset.
	DiscountSplit   SplitMethod
	ServiceFeeSplit SplitMethod

	// IncludeZeroItemPeople lets people who claimed nothing take part in even splits.
	IncludeZeroItemPeople bool
}

// DefaultCharges returns empty charges with proportional tax and tip.
func DefaultCharges() Charges {
	return Charges{
		TaxSplit: SplitProportional,
		TipSplit: SplitProportional,
	}
}

// Validate checks pool amounts and split methods.
func (c Charges) Validate() error {
	pools := []struct {
		name   string
		amount decimal.Decimal
	}{
		{"tax", c.Tax},
		{"tip", c.Tip},
		{"service fee", c.ServiceFee},
	}
	for _, p := range pools {
		if p.amount.IsNegative() {
			return fmt.Errorf("%w: %s cannot be negative (got %s)", ErrValidation, p.name, p.amount)
		}
	}
	if err := c.TaxSplit.Validate(); err != nil {
		return fmt.Errorf("tax split: %w", err)
	}
	if err := c.TipSplit.Validate(); err != nil {
		return fmt.Errorf("tip split: %w", err)
	}
	if err := c.DiscountSplit.OrProportional().Validate(); err != nil {
		return fmt.Errorf("discount split: %w", err)
	}
	if err := c.ServiceFeeSplit.OrProportional().Validate(); err != nil {
		return fmt.Errorf("service fee split: %w", err)
	}
	return nil
}

// DiscountAmount returns the magnitude of the discount.
func (c Charges) DiscountAmount() decimal.Decimal {
	return c.Discount.Abs()
}
