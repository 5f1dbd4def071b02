package sqlite

import "database/sql"

// schema sets up the database on startup. Money columns are TEXT holding
// exact decimal strings; REAL would round them.
const schema = `
CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    share_token TEXT NOT NULL UNIQUE,
    payer_id TEXT NOT NULL DEFAULT '',
    tax TEXT NOT NULL DEFAULT '0',
    tip TEXT NOT NULL DEFAULT '0',
    discount TEXT NOT NULL DEFAULT '0',
    service_fee TEXT NOT NULL DEFAULT '0',
    tax_split TEXT NOT NULL DEFAULT 'proportional',
    tip_split TEXT NOT NULL DEFAULT 'proportional',
    discount_split TEXT NOT NULL DEFAULT '',
    service_fee_split TEXT NOT NULL DEFAULT '',
    include_zero_item_people INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS people (
    bill_id TEXT NOT NULL,
    id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    is_paid INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (bill_id, id),
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS items (
    bill_id TEXT NOT NULL,
    id TEXT NOT NULL,
    position INTEGER NOT NULL,
    label TEXT NOT NULL,
    unit_price TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    PRIMARY KEY (bill_id, id),
    FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS shares (
    bill_id TEXT NOT NULL,
    item_id TEXT NOT NULL,
    person_id TEXT NOT NULL,
    weight TEXT NOT NULL,
    PRIMARY KEY (bill_id, item_id, person_id),
    FOREIGN KEY (bill_id, item_id) REFERENCES items(bill_id, id) ON DELETE CASCADE,
    FOREIGN KEY (bill_id, person_id) REFERENCES people(bill_id, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_bills_created_at ON bills(created_at);
CREATE INDEX IF NOT EXISTS idx_shares_person ON shares(bill_id, person_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
