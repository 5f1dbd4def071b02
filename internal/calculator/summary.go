package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tabby/internal/models"
)

// SummaryLine is one person's row in a bill summary.
type SummaryLine struct {
	PersonID string
	Name     string
	Total    decimal.Decimal
	Paid     bool
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

// Summary is the shareable result of a bill: who owes what and who still has to pay.
type Summary struct {
	Title       string
	Total       decimal.Decimal
	Unallocated decimal.Decimal

	// Paid is the sum of totals of people marked as paid (payer included).
	Paid decimal.Decimal

	// Outstanding is what unpaid people other than the payer still owe.
	Outstanding decimal.Decimal

	Lines []SummaryLine

	// Debts lists who has to pay the payer back. Empty without a payer.
	Debts []DebtEdge
}

// Summarize builds the summary of a bill from its computed totals.
//
// Algorithm:
//   - The payer covered the whole receipt, so their own share counts as paid.
//   - Every other person with a positive total who is not marked paid owes
//     the payer their total.
func Summarize(bill *models.Bill, totals *BillTotals) (*Summary, error) {
	if bill.PayerID != "" {
		if _, ok := bill.Person(bill.PayerID); !ok {
			return nil, fmt.Errorf("%w: payer %q is not on the bill", ErrReference, bill.PayerID)
		}
	}

	summary := &Summary{
		Title:       bill.Title,
		Total:       totals.Total,
		Unallocated: totals.Unallocated,
		Paid:        decimal.Zero,
		Outstanding: decimal.Zero,
		Lines:       make([]SummaryLine, 0, len(totals.PersonTotals)),
	}

	for _, pt := range totals.PersonTotals {
		person, ok := bill.Person(pt.PersonID)
		if !ok {
			return nil, fmt.Errorf("%w: totals reference unknown person %q", ErrReference, pt.PersonID)
		}
		paid := person.IsPaid || person.ID == bill.PayerID
		summary.Lines = append(summary.Lines, SummaryLine{
			PersonID: pt.PersonID,
			Name:     pt.Name,
			Total:    pt.Total,
			Paid:     paid,
		})

		if paid {
			summary.Paid = summary.Paid.Add(pt.Total)
			continue
		}
		if !pt.Total.IsPositive() {
			continue
		}
		summary.Outstanding = summary.Outstanding.Add(pt.Total)
		if bill.PayerID != "" {
			summary.Debts = append(summary.Debts, DebtEdge{
				From:   pt.PersonID,
				To:     bill.PayerID,
				Amount: pt.Total,
			})
		}
	}

	return summary, nil
}

// Text renders the summary as plain text suitable for pasting into a chat.
func (s *Summary) Text() string {
	var b strings.Builder
	title := s.Title
	if title == "" {
		title = "Bill"
	}
	fmt.Fprintf(&b, "%s: $%s\n", title, s.Total.StringFixed(CurrencyPlaces))
	for _, line := range s.Lines {
		status := ""
		if line.Paid {
			status = " (paid)"
		}
		name := line.Name
		if name == "" {
			name = line.PersonID
		}
		fmt.Fprintf(&b, "  %s: $%s%s\n", name, line.Total.StringFixed(CurrencyPlaces), status)
	}
	if !s.Unallocated.IsZero() {
		fmt.Fprintf(&b, "  unclaimed: $%s\n", s.Unallocated.StringFixed(CurrencyPlaces))
	}
	fmt.Fprintf(&b, "Outstanding: $%s\n", s.Outstanding.StringFixed(CurrencyPlaces))
	return b.String()
}
