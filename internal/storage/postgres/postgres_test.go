package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabby/internal/models"
	"github.com/mmynk/tabby/internal/storage"
)

var fixedNow = time.Unix(1700000000, 0)

// createMockStore creates a store backed by a mock pool.
func createMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	s := NewWithDB(mock)
	s.now = func() time.Time { return fixedNow }
	return s, mock
}

var billHeader = []string{
	"id", "title", "share_token", "payer_id", "tax", "tip", "discount", "service_fee",
	"tax_split", "tip_split", "discount_split", "service_fee_split",
	"include_zero_item_people", "created_at", "updated_at",
}

func TestMigrate(t *testing.T) {
	s, mock := createMockStore(t)
	for range migrations {
		mock.ExpectExec("CREATE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_Error(t *testing.T) {
	s, mock := createMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS bills").WillReturnError(errors.New("permission denied"))

	err := s.Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 0")
}

func TestCreateBill(t *testing.T) {
	s, mock := createMockStore(t)
	bill := &models.Bill{
		Title:   "Dinner",
		People:  []models.Person{{ID: "alice", Name: "Alice"}},
		Items:   []models.Item{{ID: "soup", Label: "Soup", UnitPrice: decimal.RequireFromString("4.50"), Quantity: 2}},
		Shares:  []models.ItemShare{{ItemID: "soup", PersonID: "alice", Weight: decimal.NewFromInt(1)}},
		Charges: models.DefaultCharges(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bills").
		WithArgs(pgxmock.AnyArg(), "Dinner", pgxmock.AnyArg(), "",
			"0", "0", "0", "0",
			"proportional", "proportional", "", "",
			false, fixedNow.Unix(), fixedNow.Unix()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO people").
		WithArgs(pgxmock.AnyArg(), "alice", 0, "Alice", false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO items").
		WithArgs(pgxmock.AnyArg(), "soup", 0, "Soup", "4.5", 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO shares").
		WithArgs(pgxmock.AnyArg(), "soup", "alice", "1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, s.CreateBill(context.Background(), bill))
	assert.NotEmpty(t, bill.ID)
	assert.NotEmpty(t, bill.ShareToken)
	assert.Equal(t, fixedNow.Unix(), bill.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBill_RollsBackOnError(t *testing.T) {
	s, mock := createMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bills").WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := s.CreateBill(context.Background(), &models.Bill{Charges: models.DefaultCharges()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert bill")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBill(t *testing.T) {
	s, mock := createMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bills WHERE id = $1")).
		WithArgs("b1").
		WillReturnRows(pgxmock.NewRows(billHeader).AddRow(
			"b1", "Dinner", "tok", "alice", "2.40", "5.00", "-3", "0",
			"proportional", "even", "", "even",
			true, int64(100), int64(200),
		))
	mock.ExpectQuery(regexp.QuoteMeta("FROM people WHERE bill_id = $1")).
		WithArgs("b1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "is_paid"}).
			AddRow("alice", "Alice", false).
			AddRow("bob", "Bob", true))
	mock.ExpectQuery(regexp.QuoteMeta("FROM items WHERE bill_id = $1")).
		WithArgs("b1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "label", "unit_price", "quantity"}).
			AddRow("pizza", "Pizza", "10.00", 2))
	mock.ExpectQuery(regexp.QuoteMeta("FROM shares sh")).
		WithArgs("b1").
		WillReturnRows(pgxmock.NewRows([]string{"item_id", "person_id", "weight"}).
			AddRow("pizza", "alice", "1").
			AddRow("pizza", "bob", "0.5"))

	bill, err := s.GetBill(context.Background(), "b1")
	require.NoError(t, err)

	assert.Equal(t, "Dinner", bill.Title)
	assert.Equal(t, "alice", bill.PayerID)
	assert.True(t, bill.Charges.Tax.Equal(decimal.RequireFromString("2.4")))
	assert.True(t, bill.Charges.Discount.Equal(decimal.NewFromInt(-3)))
	assert.Equal(t, models.SplitEven, bill.Charges.TipSplit)
	assert.Equal(t, models.SplitEven, bill.Charges.ServiceFeeSplit)
	assert.True(t, bill.Charges.IncludeZeroItemPeople)
	require.Len(t, bill.People, 2)
	assert.True(t, bill.People[1].IsPaid)
	require.Len(t, bill.Items, 1)
	assert.Equal(t, "20.00", bill.Items[0].Price().StringFixed(2))
	require.Len(t, bill.Shares, 2)
	assert.Equal(t, "0.5", bill.Shares[1].Weight.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBill_NotFound(t *testing.T) {
	s, mock := createMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM bills WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetBill(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetBill_CorruptAmount(t *testing.T) {
	s, mock := createMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM bills WHERE share_token = $1")).
		WithArgs("tok").
		WillReturnRows(pgxmock.NewRows(billHeader).AddRow(
			"b1", "Dinner", "tok", "", "lots", "0", "0", "0",
			"proportional", "proportional", "", "",
			false, int64(1), int64(1),
		))

	_, err := s.GetBillByToken(context.Background(), "tok")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestListBills(t *testing.T) {
	s, mock := createMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM bills ORDER BY created_at DESC")).
		WillReturnRows(pgxmock.NewRows(billHeader).
			AddRow("b2", "Lunch", "t2", "", "0", "0", "0", "0", "proportional", "proportional", "", "", false, int64(2), int64(2)).
			AddRow("b1", "Dinner", "t1", "", "0", "0", "0", "0", "proportional", "proportional", "", "", false, int64(1), int64(1)))

	bills, err := s.ListBills(context.Background())
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, "Lunch", bills[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBill_NotFound(t *testing.T) {
	s, mock := createMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bills WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, s.DeleteBill(context.Background(), "missing"), storage.ErrNotFound)
}

func TestUpdateCharges(t *testing.T) {
	s, mock := createMockStore(t)
	charges := models.DefaultCharges()
	charges.ServiceFee = decimal.RequireFromString("3.25")
	charges.ServiceFeeSplit = models.SplitEven

	mock.ExpectExec("UPDATE bills SET tax").
		WithArgs("0", "0", "0", "3.25", "proportional", "proportional", "", "even", false, fixedNow.Unix(), "b1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.UpdateCharges(context.Background(), "b1", charges))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemovePerson(t *testing.T) {
	s, mock := createMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bills SET updated_at = $1 WHERE id = $2")).
		WithArgs(fixedNow.Unix(), "b1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM people")).
		WithArgs("b1", "bob").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bills SET payer_id = ''")).
		WithArgs("b1", "bob").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectCommit()

	require.NoError(t, s.RemovePerson(context.Background(), "b1", "bob"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemovePerson_UnknownBill(t *testing.T) {
	s, mock := createMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bills SET updated_at = $1 WHERE id = $2")).
		WithArgs(fixedNow.Unix(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := s.RemovePerson(context.Background(), "missing", "bob")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPerson_Duplicate(t *testing.T) {
	s, mock := createMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bills SET updated_at = $1 WHERE id = $2")).
		WithArgs(fixedNow.Unix(), "b1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO people").
		WithArgs("b1", "alice", "Alice", false).
		WillReturnError(&pgconn.PgError{
			Code:    "23505", // unique_violation
			Message: "duplicate key value violates unique constraint",
		})
	mock.ExpectRollback()

	err := s.AddPerson(context.Background(), "b1", &models.Person{ID: "alice", Name: "Alice"})
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItem_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "duplicate id", err: &pgconn.PgError{Code: "23505"}, wantErr: models.ErrValidation},
		{name: "other failure", err: &pgconn.PgError{Code: "53300"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := createMockStore(t)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("UPDATE bills SET updated_at = $1 WHERE id = $2")).
				WithArgs(fixedNow.Unix(), "b1").
				WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			mock.ExpectExec("INSERT INTO items").
				WithArgs("b1", "soup", "Soup", "4.5", 1).
				WillReturnError(tt.err)
			mock.ExpectRollback()

			item := &models.Item{ID: "soup", Label: "Soup", UnitPrice: decimal.RequireFromString("4.50"), Quantity: 1}
			err := s.AddItem(context.Background(), "b1", item)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NotErrorIs(t, err, models.ErrValidation)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSetShare(t *testing.T) {
	tests := []struct {
		name      string
		hasItem   bool
		hasPerson bool
		wantErr   error
	}{
		{name: "upserts", hasItem: true, hasPerson: true},
		{name: "unknown item", hasItem: false, hasPerson: true, wantErr: storage.ErrNotFound},
		{name: "unknown person", hasItem: true, hasPerson: false, wantErr: storage.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := createMockStore(t)
			share := models.ItemShare{ItemID: "pizza", PersonID: "alice", Weight: decimal.RequireFromString("2")}

			mock.ExpectBegin()
			mock.ExpectExec("UPDATE bills SET updated_at").
				WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			mock.ExpectQuery("SELECT EXISTS").
				WithArgs("b1", "pizza", "alice").
				WillReturnRows(pgxmock.NewRows([]string{"has_item", "has_person"}).AddRow(tt.hasItem, tt.hasPerson))
			if tt.wantErr == nil {
				mock.ExpectExec("INSERT INTO shares").
					WithArgs("b1", "pizza", "alice", "2").
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			err := s.SetShare(context.Background(), "b1", share)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
