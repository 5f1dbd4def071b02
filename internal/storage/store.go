// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tabby/internal/models"
)

// ErrNotFound is returned when a bill, person, item or share does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for bill storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// in-memory) without changing the service layer.
type Store interface {
	// CreateBill persists a new bill with its items, people and shares.
	// The store fills in ID, ShareToken, CreatedAt and UpdatedAt when unset.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a complete bill by its ID.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// GetBillByToken retrieves a complete bill by its share token.
	GetBillByToken(ctx context.Context, token string) (*models.Bill, error)

	// ListBills returns all bills, newest first, without items, people or shares.
	ListBills(ctx context.Context) ([]*models.Bill, error)

	// UpdateBill updates the title and payer of an existing bill.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// UpdateCharges replaces the bill-level charges.
	UpdateCharges(ctx context.Context, billID string, charges models.Charges) error

	// DeleteBill removes a bill and everything on it.
	DeleteBill(ctx context.Context, billID string) error

	// AddPerson appends a person to a bill. The store fills in person.ID when unset.
	AddPerson(ctx context.Context, billID string, person *models.Person) error

	// RemovePerson removes a person and deletes the person's shares.
	RemovePerson(ctx context.Context, billID, personID string) error

	// SetPersonPaid flips the informational paid flag.
	SetPersonPaid(ctx context.Context, billID, personID string, paid bool) error

	// AddItem appends an item to a bill. The store fills in item.ID when unset.
	AddItem(ctx context.Context, billID string, item *models.Item) error

	// UpdateItem replaces an item's label, unit price and quantity.
	UpdateItem(ctx context.Context, billID string, item *models.Item) error

	// RemoveItem removes an item and deletes its shares.
	RemoveItem(ctx context.Context, billID, itemID string) error

	// SetShare creates or replaces the share of share.PersonID on share.ItemID.
	SetShare(ctx context.Context, billID string, share models.ItemShare) error

	// RemoveShare deletes one share.
	RemoveShare(ctx context.Context, billID, itemID, personID string) error

	// Close releases any resources held by the store.
	Close() error
}
