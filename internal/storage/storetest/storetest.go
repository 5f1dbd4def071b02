// Package storetest holds behavior checks shared by every storage.Store
// backend that can run without external services.
package storetest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabby/internal/models"
	"github.com/mmynk/tabby/internal/storage"
)

// Run exercises a fresh store returned by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()

	t.Run("CreateBill fills generated fields", func(t *testing.T) {
		s := newStore(t)
		bill := sampleBill()
		require.NoError(t, s.CreateBill(context.Background(), bill))

		assert.NotEmpty(t, bill.ID)
		assert.NotEmpty(t, bill.ShareToken)
		assert.NotZero(t, bill.CreatedAt)
	})

	t.Run("GetBill round trips", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		bill := sampleBill()
		require.NoError(t, s.CreateBill(ctx, bill))

		got, err := s.GetBill(ctx, bill.ID)
		require.NoError(t, err)

		assert.Equal(t, "Dinner", got.Title)
		assert.Equal(t, bill.ShareToken, got.ShareToken)
		assert.Equal(t, "alice", got.PayerID)
		require.Len(t, got.People, 2)
		assert.Equal(t, "alice", got.People[0].ID)
		assert.Equal(t, "bob", got.People[1].ID)
		require.Len(t, got.Items, 2)
		assert.Equal(t, "pizza", got.Items[0].ID)
		assert.Equal(t, 2, got.Items[0].Quantity)
		assert.True(t, got.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
		require.Len(t, got.Shares, 3)

		c := got.Charges
		assert.True(t, c.Tax.Equal(decimal.RequireFromString("2.40")))
		assert.True(t, c.Tip.Equal(decimal.RequireFromString("5")))
		assert.True(t, c.Discount.Equal(decimal.RequireFromString("-3")))
		assert.Equal(t, models.SplitEven, c.TipSplit)
		assert.Equal(t, models.SplitProportional, c.TaxSplit)
		assert.True(t, c.IncludeZeroItemPeople)
	})

	t.Run("GetBillByToken", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		bill := sampleBill()
		require.NoError(t, s.CreateBill(ctx, bill))

		got, err := s.GetBillByToken(ctx, bill.ShareToken)
		require.NoError(t, err)
		assert.Equal(t, bill.ID, got.ID)

		_, err = s.GetBillByToken(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("missing bill is ErrNotFound", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.GetBill(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, s.DeleteBill(ctx, "missing"), storage.ErrNotFound)
		assert.ErrorIs(t, s.UpdateCharges(ctx, "missing", models.DefaultCharges()), storage.ErrNotFound)
		assert.ErrorIs(t, s.AddPerson(ctx, "missing", &models.Person{Name: "X"}), storage.ErrNotFound)
	})

	t.Run("ListBills newest first without details", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		older := sampleBill()
		older.CreatedAt = 100
		newer := &models.Bill{Title: "Lunch", Charges: models.DefaultCharges(), CreatedAt: 200}
		require.NoError(t, s.CreateBill(ctx, older))
		require.NoError(t, s.CreateBill(ctx, newer))

		bills, err := s.ListBills(ctx)
		require.NoError(t, err)
		require.Len(t, bills, 2)
		assert.Equal(t, "Lunch", bills[0].Title)
		assert.Equal(t, "Dinner", bills[1].Title)
		assert.Empty(t, bills[1].Items)
	})

	t.Run("UpdateBill and UpdateCharges", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		bill := sampleBill()
		require.NoError(t, s.CreateBill(ctx, bill))

		bill.Title = "Late dinner"
		bill.PayerID = "bob"
		require.NoError(t, s.UpdateBill(ctx, bill))

		charges := models.DefaultCharges()
		charges.ServiceFee = decimal.RequireFromString("1.50")
		charges.ServiceFeeSplit = models.SplitEven
		require.NoError(t, s.UpdateCharges(ctx, bill.ID, charges))

		got, err := s.GetBill(ctx, bill.ID)
		require.NoError(t, err)
		assert.Equal(t, "Late dinner", got.Title)
		assert.Equal(t, "bob", got.PayerID)
		assert.True(t, got.Charges.Tax.IsZero())
		assert.True(t, got.Charges.ServiceFee.Equal(decimal.RequireFromString("1.5")))
		assert.Equal(t, models.SplitEven, got.Charges.ServiceFeeSplit)
		assert.False(t, got.Charges.IncludeZeroItemPeople)
	})

	t.Run("people", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		bill := sampleBill()
		require.NoError(t, s.CreateBill(ctx, bill))

		carol := &models.Person{Name: "Carol"}
		require.NoError(t, s.AddPerson(ctx, bill.ID, carol))
		assert.NotEmpty(t, carol.ID)

		require.NoError(t, s.SetPersonPaid(ctx, bill.ID, carol.ID, true))
		require.NoError(t, s.RemovePerson(ctx, bill.ID, "bob"))
		assert.ErrorIs(t, s.RemovePerson(ctx, bill.ID, "bob"), storage.ErrNotFound)
		assert.ErrorIs(t, s.SetPersonPaid(ctx, bill.ID, "bob", true), storage.ErrNotFound)

		got, err := s.GetBill(ctx, bill.ID)
		require.NoError(t, err)
		require.Len(t, got.People, 2)
		assert.Equal(t, "alice", got.People[0].ID)
		assert.Equal(t, carol.ID, got.People[1].ID)
		assert.True(t, got.People[1].IsPaid)
		for _, sh := range got.Shares {
			assert.NotEqual(t, "bob", sh.PersonID, "shares of a removed person are deleted")
		}
	})

	t.Run("items", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		bill := sampleBill()
		require.NoError(t, s.CreateBill(ctx, bill))

		salad := &models.Item{Label: "Salad", UnitPrice: decimal.RequireFromString("7.25"), Quantity: 1}
		require.NoError(t, s.AddItem(ctx, bill.ID, salad))
		assert.NotEmpty(t, salad.ID)

		salad.Quantity = 2
		salad.Label = "Salads"
		require.NoError(t, s.UpdateItem(ctx, bill.ID, salad))
		require.NoError(t, s.RemoveItem(ctx, bill.ID, "pizza"))
		assert.ErrorIs(t, s.RemoveItem(ctx, bill.ID, "pizza"), storage.ErrNotFound)
		assert.ErrorIs(t, s.UpdateItem(ctx, bill.ID, &models.Item{ID: "pizza", Quantity: 1}), storage.ErrNotFound)

		got, err := s.GetBill(ctx, bill.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 2)
		assert.Equal(t, "beer", got.Items[0].ID)
		assert.Equal(t, "Salads", got.Items[1].Label)
		assert.Equal(t, 2, got.Items[1].Quantity)
		require.Len(t, got.Shares, 1)
		assert.Equal(t, "beer", got.Shares[0].ItemID)
	})

	t.Run("duplicate ids are ErrValidation", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		bill := sampleBill()
		require.NoError(t, s.CreateBill(ctx, bill))

		err := s.AddPerson(ctx, bill.ID, &models.Person{ID: "alice", Name: "Alice again"})
		assert.ErrorIs(t, err, models.ErrValidation)
		err = s.AddItem(ctx, bill.ID, &models.Item{ID: "beer", Label: "Beer", UnitPrice: decimal.NewFromInt(1), Quantity: 1})
		assert.ErrorIs(t, err, models.ErrValidation)

		got, err := s.GetBill(ctx, bill.ID)
		require.NoError(t, err)
		assert.Len(t, got.People, len(bill.People))
		assert.Len(t, got.Items, len(bill.Items))
	})

	t.Run("shares", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		bill := sampleBill()
		require.NoError(t, s.CreateBill(ctx, bill))

		// Upsert replaces the weight.
		require.NoError(t, s.SetShare(ctx, bill.ID, models.ItemShare{ItemID: "pizza", PersonID: "alice", Weight: decimal.NewFromInt(3)}))
		require.NoError(t, s.SetShare(ctx, bill.ID, models.ItemShare{ItemID: "beer", PersonID: "alice", Weight: decimal.NewFromInt(1)}))
		require.NoError(t, s.RemoveShare(ctx, bill.ID, "pizza", "bob"))

		assert.ErrorIs(t, s.RemoveShare(ctx, bill.ID, "pizza", "bob"), storage.ErrNotFound)
		assert.ErrorIs(t, s.SetShare(ctx, bill.ID, models.ItemShare{ItemID: "ghost", PersonID: "alice", Weight: decimal.NewFromInt(1)}), storage.ErrNotFound)
		assert.ErrorIs(t, s.SetShare(ctx, bill.ID, models.ItemShare{ItemID: "pizza", PersonID: "ghost", Weight: decimal.NewFromInt(1)}), storage.ErrNotFound)

		got, err := s.GetBill(ctx, bill.ID)
		require.NoError(t, err)
		weights := map[string]string{}
		for _, sh := range got.Shares {
			weights[sh.ItemID+"/"+sh.PersonID] = sh.Weight.String()
		}
		assert.Equal(t, map[string]string{
			"pizza/alice": "3",
			"beer/bob":    "1",
			"beer/alice":  "1",
		}, weights)
	})

	t.Run("DeleteBill", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		bill := sampleBill()
		require.NoError(t, s.CreateBill(ctx, bill))

		require.NoError(t, s.DeleteBill(ctx, bill.ID))
		_, err := s.GetBill(ctx, bill.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func sampleBill() *models.Bill {
	charges := models.DefaultCharges()
	charges.Tax = decimal.RequireFromString("2.40")
	charges.Tip = decimal.RequireFromString("5")
	charges.TipSplit = models.SplitEven
	charges.Discount = decimal.RequireFromString("-3")
	charges.IncludeZeroItemPeople = true

	return &models.Bill{
		Title:   "Dinner",
		PayerID: "alice",
		People: []models.Person{
			{ID: "alice", Name: "Alice"},
			{ID: "bob", Name: "Bob"},
		},
		Items: []models.Item{
			{ID: "pizza", Label: "Pizza", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
			{ID: "beer", Label: "Beer", UnitPrice: decimal.RequireFromString("6.50"), Quantity: 1},
		},
		Shares: []models.ItemShare{
			{ItemID: "pizza", PersonID: "alice", Weight: decimal.NewFromInt(1)},
			{ItemID: "pizza", PersonID: "bob", Weight: decimal.NewFromInt(1)},
			{ItemID: "beer", PersonID: "bob", Weight: decimal.NewFromInt(1)},
		},
		Charges: charges,
	}
}
