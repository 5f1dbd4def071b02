package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabby/internal/models"
)

func dinnerBill() *models.Bill {
	return &models.Bill{
		Title: "Friday dinner",
		Items: []models.Item{
			item("ramen", "18.00", 1),
			item("gyoza", "8.00", 1),
			item("beer", "6.00", 2),
		},
		People: []models.Person{
			{ID: "alice", Name: "Alice"},
			{ID: "bob", Name: "Bob"},
			{ID: "carol", Name: "Carol", IsPaid: true},
		},
		Shares: []models.ItemShare{
			share("ramen", "alice", "1"),
			share("gyoza", "bob", "1"),
			share("beer", "bob", "1"),
			share("beer", "carol", "1"),
		},
		Charges: models.DefaultCharges(),
		PayerID: "alice",
	}
}

func TestSummarize(t *testing.T) {
	bill := dinnerBill()
	totals, err := ComputeTotals(bill.Items, bill.Shares, bill.People, bill.Charges, DefaultOptions())
	require.NoError(t, err)

	summary, err := Summarize(bill, totals)
	require.NoError(t, err)

	assertAmount(t, "38.00", summary.Total, "total")
	// Alice paid the restaurant, Carol already settled.
	assertAmount(t, "24.00", summary.Paid, "paid")
	assertAmount(t, "14.00", summary.Outstanding, "outstanding")

	require.Len(t, summary.Lines, 3)
	assert.True(t, summary.Lines[0].Paid)
	assert.False(t, summary.Lines[1].Paid)
	assert.True(t, summary.Lines[2].Paid)

	require.Len(t, summary.Debts, 1)
	assert.Equal(t, "bob", summary.Debts[0].From)
	assert.Equal(t, "alice", summary.Debts[0].To)
	assertAmount(t, "14.00", summary.Debts[0].Amount, "bob owes")
}

func TestSummarize_NoPayer(t *testing.T) {
	bill := dinnerBill()
	bill.PayerID = ""
	totals, err := ComputeTotals(bill.Items, bill.Shares, bill.People, bill.Charges, DefaultOptions())
	require.NoError(t, err)

	summary, err := Summarize(bill, totals)
	require.NoError(t, err)

	assert.Empty(t, summary.Debts)
	assertAmount(t, "32.00", summary.Outstanding, "outstanding")
}

func TestSummarize_UnknownPayer(t *testing.T) {
	bill := dinnerBill()
	bill.PayerID = "mallory"
	totals, err := ComputeTotals(bill.Items, bill.Shares, bill.People, bill.Charges, DefaultOptions())
	require.NoError(t, err)

	_, err = Summarize(bill, totals)
	assert.ErrorIs(t, err, ErrReference)
}

func TestSummary_Text(t *testing.T) {
	bill := dinnerBill()
	bill.Items = append(bill.Items, item("dessert", "5.00", 1))
	totals, err := ComputeTotals(bill.Items, bill.Shares, bill.People, bill.Charges, DefaultOptions())
	require.NoError(t, err)
	summary, err := Summarize(bill, totals)
	require.NoError(t, err)

	text := summary.Text()
	assert.Contains(t, text, "Friday dinner: $43.00")
	assert.Contains(t, text, "Alice: $18.00 (paid)")
	assert.Contains(t, text, "Bob: $14.00\n")
	assert.Contains(t, text, "unclaimed: $5.00")
	assert.Contains(t, text, "Outstanding: $14.00")
}
