package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabby/internal/models"
	"github.com/mmynk/tabby/internal/storage"
	"github.com/mmynk/tabby/internal/storage/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		return New()
	})
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	bill := &models.Bill{
		Title:  "Copy",
		People: []models.Person{{ID: "a", Name: "A"}},
	}
	require.NoError(t, s.CreateBill(ctx, bill))

	bill.People[0].Name = "changed by caller"
	got, err := s.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.People[0].Name)

	got.People[0].Name = "changed again"
	again, err := s.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.People[0].Name)
}

func TestStore_FailedMutationLeavesBillUntouched(t *testing.T) {
	s := New()
	ctx := context.Background()
	bill := &models.Bill{People: []models.Person{{ID: "a"}}}
	require.NoError(t, s.CreateBill(ctx, bill))

	err := s.AddPerson(ctx, bill.ID, &models.Person{ID: "a"})
	require.Error(t, err)

	got, err := s.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Len(t, got.People, 1)
}

func TestStore_ConcurrentShares(t *testing.T) {
	s := New()
	ctx := context.Background()
	bill := &models.Bill{Items: []models.Item{{ID: "i", Quantity: 1}}}
	require.NoError(t, s.CreateBill(ctx, bill))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		p := &models.Person{}
		require.NoError(t, s.AddPerson(ctx, bill.ID, p))
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, s.SetShare(ctx, bill.ID, models.ItemShare{ItemID: "i", PersonID: id, Weight: decimal.NewFromInt(1)}))
		}(p.ID)
	}
	wg.Wait()

	got, err := s.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Len(t, got.Shares, 20)
}
