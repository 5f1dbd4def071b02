package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tabby/internal/models"
	"github.com/mmynk/tabby/internal/storage"
)

func (s *Store) listPeople(ctx context.Context, billID string) ([]models.Person, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, name, is_paid FROM people WHERE bill_id = $1 ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	defer rows.Close()

	var people []models.Person
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.IsPaid); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}
	return people, nil
}

func (s *Store) listItems(ctx context.Context, billID string) ([]models.Item, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, label, unit_price::text, quantity FROM items WHERE bill_id = $1 ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		var price string
		if err := rows.Scan(&item.ID, &item.Label, &price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if err := parseDecimals([]string{price}, []*decimal.Decimal{&item.UnitPrice}); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func (s *Store) listShares(ctx context.Context, billID string) ([]models.ItemShare, error) {
	rows, err := s.db.Query(ctx,
		`SELECT sh.item_id, sh.person_id, sh.weight::text
		 FROM shares sh
		 JOIN items i ON i.bill_id = sh.bill_id AND i.id = sh.item_id
		 JOIN people p ON p.bill_id = sh.bill_id AND p.id = sh.person_id
		 WHERE sh.bill_id = $1
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
		var weight string
		if err := rows.Scan(&sh.ItemID, &sh.PersonID, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		if err := parseDecimals([]string{weight}, []*decimal.Decimal{&sh.Weight}); err != nil {
			return nil, err
		}
		shares = append(shares, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}
	return shares, nil
}

// AddPerson appends a person after everyone already on the bill.
func (s *Store) AddPerson(ctx context.Context, billID string, person *models.Person) error {
	if person.ID == "" {
		person.ID = uuid.New().String()
	}
	return s.inBill(ctx, billID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO people (bill_id, id, position, name, is_paid)
			 VALUES ($1, $2, (SELECT COALESCE(MAX(position), -1) + 1 FROM people WHERE bill_id = $1), $3, $4)`,
			billID, person.ID, person.Name, person.IsPaid,
		)
		if err != nil {
			return insertError("person", person.ID, err)
		}
		return nil
	})
}

// RemovePerson deletes a person; their shares cascade.
func (s *Store) RemovePerson(ctx context.Context, billID, personID string) error {
	return s.inBill(ctx, billID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"DELETE FROM people WHERE bill_id = $1 AND id = $2",
			billID, personID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete person: %w", err)
		}
		if err := expectRow(tag, "person "+personID); err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			"UPDATE bills SET payer_id = '' WHERE id = $1 AND payer_id = $2",
			billID, personID,
		)
		if err != nil {
			return fmt.Errorf("failed to clear payer: %w", err)
		}
		return nil
	})
}

// SetPersonPaid records whether a person has settled up.
func (s *Store) SetPersonPaid(ctx context.Context, billID, personID string, paid bool) error {
	return s.inBill(ctx, billID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"UPDATE people SET is_paid = $1 WHERE bill_id = $2 AND id = $3",
			paid, billID, personID,
		)
		if err != nil {
			return fmt.Errorf("failed to update person: %w", err)
		}
		return expectRow(tag, "person "+personID)
	})
}

// AddItem appends an item after the existing ones.
func (s *Store) AddItem(ctx context.Context, billID string, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	return s.inBill(ctx, billID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO items (bill_id, id, position, label, unit_price, quantity)
			 VALUES ($1, $2, (SELECT COALESCE(MAX(position), -1) + 1 FROM items WHERE bill_id = $1), $3, $4, $5)`,
			billID, item.ID, item.Label, item.UnitPrice.String(), item.Quantity,
		)
		if err != nil {
			return insertError("item", item.ID, err)
		}
		return nil
	})
}

// UpdateItem replaces label, unit price and quantity in place.
func (s *Store) UpdateItem(ctx context.Context, billID string, item *models.Item) error {
	return s.inBill(ctx, billID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"UPDATE items SET label = $1, unit_price = $2, quantity = $3 WHERE bill_id = $4 AND id = $5",
			item.Label, item.UnitPrice.String(), item.Quantity, billID, item.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		return expectRow(tag, "item "+item.ID)
	})
}

// RemoveItem deletes an item; its shares cascade.
func (s *Store) RemoveItem(ctx context.Context, billID, itemID string) error {
	return s.inBill(ctx, billID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"DELETE FROM items WHERE bill_id = $1 AND id = $2",
			billID, itemID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		return expectRow(tag, "item "+itemID)
	})
}

// SetShare inserts a share or replaces its weight.
func (s *Store) SetShare(ctx context.Context, billID string, share models.ItemShare) error {
	return s.inBill(ctx, billID, func(tx pgx.Tx) error {
		var hasItem, hasPerson bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM items WHERE bill_id = $1 AND id = $2),
			        EXISTS (SELECT 1 FROM people WHERE bill_id = $1 AND id = $3)`,
			billID, share.ItemID, share.PersonID,
		).Scan(&hasItem, &hasPerson)
		if err != nil {
			return fmt.Errorf("failed to look up share targets: %w", err)
		}
		if !hasItem {
			return fmt.Errorf("item %s: %w", share.ItemID, storage.ErrNotFound)
		}
		if !hasPerson {
			return fmt.Errorf("person %s: %w", share.PersonID, storage.ErrNotFound)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO shares (bill_id, item_id, person_id, weight) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (bill_id, item_id, person_id) DO UPDATE SET weight = EXCLUDED.weight`,
			billID, share.ItemID, share.PersonID, share.Weight.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert share: %w", err)
		}
		return nil
	})
}

// RemoveShare deletes one share.
func (s *Store) RemoveShare(ctx context.Context, billID, itemID, personID string) error {
	return s.inBill(ctx, billID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"DELETE FROM shares WHERE bill_id = $1 AND item_id = $2 AND person_id = $3",
			billID, itemID, personID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete share: %w", err)
		}
		return expectRow(tag, fmt.Sprintf("share of %s by %s", itemID, personID))
	})
}

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

func insertError(what, id string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s %s already on bill", models.ErrValidation, what, id)
	}
	return fmt.Errorf("failed to insert %s: %w", what, err)
}
