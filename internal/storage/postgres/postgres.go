// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Store interface on top of a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tabby/internal/models"
	"github.com/mmynk/tabby/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// querier is the subset of pgx shared by pools and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is satisfied by *pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Store implements storage.Store using PostgreSQL.
type Store struct {
	db  DB
	now func() time.Time
}

// New connects to databaseURL, verifies the connection and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := NewWithDB(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// NewWithDB wraps an existing pool without running migrations.
func NewWithDB(db DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Close closes the pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// withTx runs fn in a transaction, committing only if fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback after commit is a no-op that reports ErrTxClosed.
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to roll back transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// inBill runs fn in a transaction after bumping the bill's updated_at.
func (s *Store) inBill(ctx context.Context, billID string, fn func(tx pgx.Tx) error) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"UPDATE bills SET updated_at = $1 WHERE id = $2",
			s.now().Unix(), billID,
		)
		if err != nil {
			return fmt.Errorf("failed to update bill: %w", err)
		}
		if err := expectRow(tag, "bill "+billID); err != nil {
			return err
		}
		return fn(tx)
	})
}

func expectRow(tag pgconn.CommandTag, what string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return nil
}

// CreateBill persists a new bill with its people, items and shares.
func (s *Store) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.ShareToken == "" {
		bill.ShareToken = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = s.now().Unix()
	}
	bill.UpdatedAt = bill.CreatedAt
	for i := range bill.People {
		if bill.People[i].ID == "" {
			bill.People[i].ID = uuid.New().String()
		}
	}
	for i := range bill.Items {
		if bill.Items[i].ID == "" {
			bill.Items[i].ID = uuid.New().String()
		}
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		c := bill.Charges
		_, err := tx.Exec(ctx,
			`INSERT INTO bills (id, title, share_token, payer_id, tax, tip, discount, service_fee,
				tax_split, tip_split, discount_split, service_fee_split, include_zero_item_people,
				created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			bill.ID, bill.Title, bill.ShareToken, bill.PayerID,
			c.Tax.String(), c.Tip.String(), c.Discount.String(), c.ServiceFee.String(),
			string(c.TaxSplit), string(c.TipSplit), string(c.DiscountSplit), string(c.ServiceFeeSplit),
			c.IncludeZeroItemPeople, bill.CreatedAt, bill.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill: %w", err)
		}

		for i, p := range bill.People {
			_, err = tx.Exec(ctx,
				"INSERT INTO people (bill_id, id, position, name, is_paid) VALUES ($1, $2, $3, $4, $5)",
				bill.ID, p.ID, i, p.Name, p.IsPaid,
			)
			if err != nil {
				return fmt.Errorf("failed to insert person: %w", err)
			}
		}

		for i, item := range bill.Items {
			_, err = tx.Exec(ctx,
				"INSERT INTO items (bill_id, id, position, label, unit_price, quantity) VALUES ($1, $2, $3, $4, $5, $6)",
				bill.ID, item.ID, i, item.Label, item.UnitPrice.String(), item.Quantity,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item: %w", err)
			}
		}

		for _, sh := range bill.Shares {
			_, err = tx.Exec(ctx,
				"INSERT INTO shares (bill_id, item_id, person_id, weight) VALUES ($1, $2, $3, $4)",
				bill.ID, sh.ItemID, sh.PersonID, sh.Weight.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert share: %w", err)
			}
		}
		return nil
	})
}

// Money columns are read back as text so no precision passes through float64.
const billColumns = `id, title, share_token, payer_id, tax::text, tip::text, discount::text,
	service_fee::text, tax_split, tip_split, discount_split, service_fee_split,
	include_zero_item_people, created_at, updated_at`

func scanBill(row pgx.Row) (*models.Bill, error) {
	bill := &models.Bill{}
	c := &bill.Charges
	var tax, tip, discount, fee string
	var taxSplit, tipSplit, discountSplit, feeSplit string
	err := row.Scan(&bill.ID, &bill.Title, &bill.ShareToken, &bill.PayerID,
		&tax, &tip, &discount, &fee,
		&taxSplit, &tipSplit, &discountSplit, &feeSplit, &c.IncludeZeroItemPeople,
		&bill.CreatedAt, &bill.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := parseDecimals(
		[]string{tax, tip, discount, fee},
		[]*decimal.Decimal{&c.Tax, &c.Tip, &c.Discount, &c.ServiceFee},
	); err != nil {
		return nil, err
	}
	c.TaxSplit = models.SplitMethod(taxSplit)
	c.TipSplit = models.SplitMethod(tipSplit)
	c.DiscountSplit = models.SplitMethod(discountSplit)
	c.ServiceFeeSplit = models.SplitMethod(feeSplit)
	return bill, nil
}

func parseDecimals(raw []string, dst []*decimal.Decimal) error {
	for i, r := range raw {
		d, err := decimal.NewFromString(r)
		if err != nil {
			return fmt.Errorf("failed to parse stored amount %q: %w", r, err)
		}
		*dst[i] = d
	}
	return nil
}

// GetBill retrieves a bill by ID, including people, items and shares.
func (s *Store) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	row := s.db.QueryRow(ctx, "SELECT "+billColumns+" FROM bills WHERE id = $1", billID)
	return s.loadBill(ctx, row, "bill "+billID)
}

// GetBillByToken retrieves a bill by its share token.
func (s *Store) GetBillByToken(ctx context.Context, token string) (*models.Bill, error) {
	row := s.db.QueryRow(ctx, "SELECT "+billColumns+" FROM bills WHERE share_token = $1", token)
	return s.loadBill(ctx, row, "share token")
}

func (s *Store) loadBill(ctx context.Context, row pgx.Row, what string) (*models.Bill, error) {
	bill, err := scanBill(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	if bill.People, err = s.listPeople(ctx, bill.ID); err != nil {
		return nil, err
	}
	if bill.Items, err = s.listItems(ctx, bill.ID); err != nil {
		return nil, err
	}
	if bill.Shares, err = s.listShares(ctx, bill.ID); err != nil {
		return nil, err
	}
	return bill, nil
}

// ListBills returns bill headers, newest first.
func (s *Store) ListBills(ctx context.Context) ([]*models.Bill, error) {
	rows, err := s.db.Query(ctx, "SELECT "+billColumns+" FROM bills ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

// UpdateBill updates the title and payer.
func (s *Store) UpdateBill(ctx context.Context, bill *models.Bill) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE bills SET title = $1, payer_id = $2, updated_at = $3 WHERE id = $4",
		bill.Title, bill.PayerID, s.now().Unix(), bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	return expectRow(tag, "bill "+bill.ID)
}

// UpdateCharges replaces all bill-level charges and split selections.
func (s *Store) UpdateCharges(ctx context.Context, billID string, c models.Charges) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE bills SET tax = $1, tip = $2, discount = $3, service_fee = $4,
			tax_split = $5, tip_split = $6, discount_split = $7, service_fee_split = $8,
			include_zero_item_people = $9, updated_at = $10
		 WHERE id = $11`,
		c.Tax.String(), c.Tip.String(), c.Discount.String(), c.ServiceFee.String(),
		string(c.TaxSplit), string(c.TipSplit), string(c.DiscountSplit), string(c.ServiceFeeSplit),
		c.IncludeZeroItemPeople, s.now().Unix(), billID,
	)
	if err != nil {
		return fmt.Errorf("failed to update charges: %w", err)
	}
	return expectRow(tag, "bill "+billID)
}

// DeleteBill removes a bill; people, items and shares cascade.
func (s *Store) DeleteBill(ctx context.Context, billID string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM bills WHERE id = $1", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return expectRow(tag, "bill "+billID)
}
