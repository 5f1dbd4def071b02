package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/tabby/internal/models"
	"github.com/mmynk/tabby/internal/storage"
)

func (s *SQLiteStore) listItems(ctx context.Context, billID string) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, label, unit_price, quantity FROM items WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Label, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func (s *SQLiteStore) listShares(ctx context.Context, billID string) ([]models.ItemShare, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sh.item_id, sh.person_id, sh.weight
		 FROM shares sh
		 JOIN items i ON i.bill_id = sh.bill_id AND i.id = sh.item_id
		 JOIN people p ON p.bill_id = sh.bill_id AND p.id = sh.person_id
		 WHERE sh.bill_id = ?
		 ORDER BY i.position, p.position`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	var shares []models.ItemShare
	for rows.Next() {
		var sh models.ItemShare
		if err := rows.Scan(&sh.ItemID, &sh.PersonID, &sh.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}
	return shares, nil
}

// AddItem appends an item after the existing ones.
func (s *SQLiteStore) AddItem(ctx context.Context, billID string, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	return s.inTx(ctx, billID, func(tx *sql.Tx) error {
		if err := unused(ctx, tx, "items", billID, item.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO items (bill_id, id, position, label, unit_price, quantity)
			 VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM items WHERE bill_id = ?), ?, ?, ?)`,
			billID, item.ID, billID, item.Label, item.UnitPrice.String(), item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		return nil
	})
}

// UpdateItem replaces label, unit price and quantity in place.
func (s *SQLiteStore) UpdateItem(ctx context.Context, billID string, item *models.Item) error {
	return s.inTx(ctx, billID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE items SET label = ?, unit_price = ?, quantity = ? WHERE bill_id = ? AND id = ?",
			item.Label, item.UnitPrice.String(), item.Quantity, billID, item.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		return expectRow(res, "item "+item.ID)
	})
}

// RemoveItem deletes an item; its shares cascade.
func (s *SQLiteStore) RemoveItem(ctx context.Context, billID, itemID string) error {
	return s.inTx(ctx, billID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM items WHERE bill_id = ? AND id = ?",
			billID, itemID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		return expectRow(res, "item "+itemID)
	})
}

// SetShare inserts a share or replaces its weight.
func (s *SQLiteStore) SetShare(ctx context.Context, billID string, share models.ItemShare) error {
	return s.inTx(ctx, billID, func(tx *sql.Tx) error {
		if err := exists(ctx, tx, "items", billID, share.ItemID); err != nil {
			return err
		}
		if err := exists(ctx, tx, "people", billID, share.PersonID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO shares (bill_id, item_id, person_id, weight) VALUES (?, ?, ?, ?)
			 ON CONFLICT (bill_id, item_id, person_id) DO UPDATE SET weight = excluded.weight`,
			billID, share.ItemID, share.PersonID, share.Weight.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert share: %w", err)
		}
		return nil
	})
}

// RemoveShare deletes one share.
func (s *SQLiteStore) RemoveShare(ctx context.Context, billID, itemID, personID string) error {
	return s.inTx(ctx, billID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM shares WHERE bill_id = ? AND item_id = ? AND person_id = ?",
			billID, itemID, personID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete share: %w", err)
		}
		return expectRow(res, fmt.Sprintf("share of %s by %s", itemID, personID))
	})
}

// exists reports ErrNotFound when table has no row for (billID, id).
func exists(ctx context.Context, tx *sql.Tx, table, billID, id string) error {
	n, err := countRows(ctx, tx, table, billID, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, storage.ErrNotFound)
	}
	return nil
}

// unused fails with ErrValidation when the bill already has a row with this id.
func unused(ctx context.Context, tx *sql.Tx, table, billID, id string) error {
	n, err := countRows(ctx, tx, table, billID, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %s %s already on bill", models.ErrValidation, table, id)
	}
	return nil
}

func countRows(ctx context.Context, tx *sql.Tx, table, billID, id string) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+table+" WHERE bill_id = ? AND id = ?",
		billID, id,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to look up %s: %w", table, err)
	}
	return n, nil
}
