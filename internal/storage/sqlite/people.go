package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/tabby/internal/models"
)

func (s *SQLiteStore) listPeople(ctx context.Context, billID string) ([]models.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, is_paid FROM people WHERE bill_id = ? ORDER BY position",
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

// AddPerson appends a person after everyone already on the bill.
func (s *SQLiteStore) AddPerson(ctx context.Context, billID string, person *models.Person) error {
	if person.ID == "" {
		person.ID = uuid.New().String()
	}
	return s.inTx(ctx, billID, func(tx *sql.Tx) error {
		if err := unused(ctx, tx, "people", billID, person.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO people (bill_id, id, position, name, is_paid)
			 VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM people WHERE bill_id = ?), ?, ?)`,
			billID, person.ID, billID, person.Name, person.IsPaid,
		)
		if err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
		return nil
	})
}

// RemovePerson deletes a person; their shares cascade.
func (s *SQLiteStore) RemovePerson(ctx context.Context, billID, personID string) error {
	return s.inTx(ctx, billID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM people WHERE bill_id = ? AND id = ?",
			billID, personID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete person: %w", err)
		}
		if err := expectRow(res, "person "+personID); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE bills SET payer_id = '' WHERE id = ? AND payer_id = ?",
			billID, personID,
		)
		if err != nil {
			return fmt.Errorf("failed to clear payer: %w", err)
		}
		return nil
	})
}

// SetPersonPaid records whether a person has settled up.
func (s *SQLiteStore) SetPersonPaid(ctx context.Context, billID, personID string, paid bool) error {
	return s.inTx(ctx, billID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE people SET is_paid = ? WHERE bill_id = ? AND id = ?",
			paid, billID, personID,
		)
		if err != nil {
			return fmt.Errorf("failed to update person: %w", err)
		}
		return expectRow(res, "person "+personID)
	})
}
