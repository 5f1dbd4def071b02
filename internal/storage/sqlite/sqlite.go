// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/tabby/internal/models"
	"github.com/mmynk/tabby/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection, not just the first.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBill persists a new bill with its people, items and shares.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	// Generate IDs if not set
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.ShareToken == "" {
		bill.ShareToken = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	bill.UpdatedAt = bill.CreatedAt

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	c := bill.Charges
	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, title, share_token, payer_id, tax, tip, discount, service_fee,
			tax_split, tip_split, discount_split, service_fee_split, include_zero_item_people,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Title, bill.ShareToken, bill.PayerID,
		c.Tax.String(), c.Tip.String(), c.Discount.String(), c.ServiceFee.String(),
		string(c.TaxSplit), string(c.TipSplit), string(c.DiscountSplit), string(c.ServiceFeeSplit),
		c.IncludeZeroItemPeople, bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i := range bill.People {
		p := &bill.People[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO people (bill_id, id, position, name, is_paid) VALUES (?, ?, ?, ?, ?)",
			bill.ID, p.ID, i, p.Name, p.IsPaid,
		)
		if err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
	}

	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO items (bill_id, id, position, label, unit_price, quantity) VALUES (?, ?, ?, ?, ?, ?)",
			bill.ID, item.ID, i, item.Label, item.UnitPrice.String(), item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	for _, sh := range bill.Shares {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO shares (bill_id, item_id, person_id, weight) VALUES (?, ?, ?, ?)",
			bill.ID, sh.ItemID, sh.PersonID, sh.Weight.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const billColumns = `id, title, share_token, payer_id, tax, tip, discount, service_fee,
	tax_split, tip_split, discount_split, service_fee_split, include_zero_item_people,
	created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBill(row scanner) (*models.Bill, error) {
	bill := &models.Bill{}
	c := &bill.Charges
	var taxSplit, tipSplit, discountSplit, feeSplit string
	err := row.Scan(&bill.ID, &bill.Title, &bill.ShareToken, &bill.PayerID,
		&c.Tax, &c.Tip, &c.Discount, &c.ServiceFee,
		&taxSplit, &tipSplit, &discountSplit, &feeSplit, &c.IncludeZeroItemPeople,
		&bill.CreatedAt, &bill.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.TaxSplit = models.SplitMethod(taxSplit)
	c.TipSplit = models.SplitMethod(tipSplit)
	c.DiscountSplit = models.SplitMethod(discountSplit)
	c.ServiceFeeSplit = models.SplitMethod(feeSplit)
	return bill, nil
}

// GetBill retrieves a bill by ID, including people, items and shares.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+billColumns+" FROM bills WHERE id = ?", billID)
	return s.loadBill(ctx, row, "bill "+billID)
}

// GetBillByToken retrieves a bill by its share token.
func (s *SQLiteStore) GetBillByToken(ctx context.Context, token string) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+billColumns+" FROM bills WHERE share_token = ?", token)
	return s.loadBill(ctx, row, "share token")
}

func (s *SQLiteStore) loadBill(ctx context.Context, row *sql.Row, what string) (*models.Bill, error) {
	bill, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
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
func (s *SQLiteStore) ListBills(ctx context.Context) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+billColumns+" FROM bills ORDER BY created_at DESC, id",
	)
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
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE bills SET title = ?, payer_id = ?, updated_at = ? WHERE id = ?",
		bill.Title, bill.PayerID, time.Now().Unix(), bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	return expectRow(res, "bill "+bill.ID)
}

// UpdateCharges replaces all bill-level charges and split selections.
func (s *SQLiteStore) UpdateCharges(ctx context.Context, billID string, c models.Charges) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bills SET tax = ?, tip = ?, discount = ?, service_fee = ?,
			tax_split = ?, tip_split = ?, discount_split = ?, service_fee_split = ?,
			include_zero_item_people = ?, updated_at = ?
		 WHERE id = ?`,
		c.Tax.String(), c.Tip.String(), c.Discount.String(), c.ServiceFee.String(),
		string(c.TaxSplit), string(c.TipSplit), string(c.DiscountSplit), string(c.ServiceFeeSplit),
		c.IncludeZeroItemPeople, time.Now().Unix(), billID,
	)
	if err != nil {
		return fmt.Errorf("failed to update charges: %w", err)
	}
	return expectRow(res, "bill "+billID)
}

// DeleteBill removes a bill; people, items and shares cascade.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return expectRow(res, "bill "+billID)
}

// touch bumps updated_at inside tx and reports ErrNotFound for unknown bills.
func touch(ctx context.Context, tx *sql.Tx, billID string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE bills SET updated_at = ? WHERE id = ?",
		time.Now().Unix(), billID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	return expectRow(res, "bill "+billID)
}

func expectRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return nil
}

// inTx runs fn in a transaction after confirming the bill exists.
func (s *SQLiteStore) inTx(ctx context.Context, billID string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := touch(ctx, tx, billID); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
