package postgres

import (
	"context"
	"fmt"
)

// migrations are applied in order on startup; each is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS bills (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		share_token TEXT NOT NULL UNIQUE,
		payer_id TEXT NOT NULL DEFAULT '',
		tax NUMERIC NOT NULL DEFAULT 0,
		tip NUMERIC NOT NULL DEFAULT 0,
		discount NUMERIC NOT NULL DEFAULT 0,
		service_fee NUMERIC NOT NULL DEFAULT 0,
		tax_split TEXT NOT NULL DEFAULT 'proportional',
		tip_split TEXT NOT NULL DEFAULT 'proportional',
		discount_split TEXT NOT NULL DEFAULT '',
		service_fee_split TEXT NOT NULL DEFAULT '',
		include_zero_item_people BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS people (
		bill_id TEXT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		is_paid BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (bill_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		bill_id TEXT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		position INTEGER NOT NULL,
		label TEXT NOT NULL,
		unit_price NUMERIC NOT NULL,
		quantity INTEGER NOT NULL,
		PRIMARY KEY (bill_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS shares (
		bill_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		person_id TEXT NOT NULL,
		weight NUMERIC NOT NULL,
		PRIMARY KEY (bill_id, item_id, person_id),
		FOREIGN KEY (bill_id, item_id) REFERENCES items(bill_id, id) ON DELETE CASCADE,
		FOREIGN KEY (bill_id, person_id) REFERENCES people(bill_id, id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bills_created_at ON bills(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_shares_person ON shares(bill_id, person_id)`,
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
