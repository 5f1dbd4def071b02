// Package memory provides an in-memory implementation of storage.Store.
// It is meant for local development and tests; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tabby/internal/models"
	"github.com/mmynk/tabby/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store keeps bills in a map guarded by a RWMutex. Bills are deep-copied on
// the way in and out so callers never share memory with the store.
type Store struct {
	mu    sync.RWMutex
	bills map[string]*models.Bill
	now   func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		bills: make(map[string]*models.Bill),
		now:   time.Now,
	}
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func (s *Store) CreateBill(ctx context.Context, bill *models.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if _, exists := s.bills[bill.ID]; exists {
		return fmt.Errorf("bill already exists: %s", bill.ID)
	}
	if bill.ShareToken == "" {
		bill.ShareToken = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = s.now().Unix()
	}
	bill.UpdatedAt = bill.CreatedAt
	for i := range bill.Items {
		if bill.Items[i].ID == "" {
			bill.Items[i].ID = uuid.New().String()
		}
	}
	for i := range bill.People {
		if bill.People[i].ID == "" {
			bill.People[i].ID = uuid.New().String()
		}
	}

	s.bills[bill.ID] = cloneBill(bill)
	return nil
}

func (s *Store) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bill, ok := s.bills[billID]
	if !ok {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	return cloneBill(bill), nil
}

func (s *Store) GetBillByToken(ctx context.Context, token string) (*models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, bill := range s.bills {
		if token != "" && bill.ShareToken == token {
			return cloneBill(bill), nil
		}
	}
	return nil, fmt.Errorf("share token: %w", storage.ErrNotFound)
}

func (s *Store) ListBills(ctx context.Context) ([]*models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bills := make([]*models.Bill, 0, len(s.bills))
	for _, bill := range s.bills {
		summary := *bill
		summary.Items, summary.People, summary.Shares = nil, nil, nil
		bills = append(bills, &summary)
	}
	sort.Slice(bills, func(i, j int) bool {
		if bills[i].CreatedAt != bills[j].CreatedAt {
			return bills[i].CreatedAt > bills[j].CreatedAt
		}
		return bills[i].ID < bills[j].ID
	})
	return bills, nil
}

func (s *Store) UpdateBill(ctx context.Context, bill *models.Bill) error {
	return s.mutate(bill.ID, func(b *models.Bill) error {
		b.Title = bill.Title
		b.PayerID = bill.PayerID
		return nil
	})
}

func (s *Store) UpdateCharges(ctx context.Context, billID string, charges models.Charges) error {
	return s.mutate(billID, func(b *models.Bill) error {
		b.Charges = charges
		return nil
	})
}

func (s *Store) DeleteBill(ctx context.Context, billID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bills[billID]; !ok {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	delete(s.bills, billID)
	return nil
}

func (s *Store) AddPerson(ctx context.Context, billID string, person *models.Person) error {
	return s.mutate(billID, func(b *models.Bill) error {
		if person.ID == "" {
			person.ID = uuid.New().String()
		}
		if _, exists := b.Person(person.ID); exists {
			return fmt.Errorf("%w: person already on bill: %s", models.ErrValidation, person.ID)
		}
		b.People = append(b.People, *person)
		return nil
	})
}

func (s *Store) RemovePerson(ctx context.Context, billID, personID string) error {
	return s.mutate(billID, func(b *models.Bill) error {
		idx := -1
		for i, p := range b.People {
			if p.ID == personID {
				idx = i
			}
		}
		if idx < 0 {
			return fmt.Errorf("person %s: %w", personID, storage.ErrNotFound)
		}
		b.People = append(b.People[:idx], b.People[idx+1:]...)
		b.Shares = filterShares(b.Shares, func(sh models.ItemShare) bool { return sh.PersonID != personID })
		if b.PayerID == personID {
			b.PayerID = ""
		}
		return nil
	})
}

func (s *Store) SetPersonPaid(ctx context.Context, billID, personID string, paid bool) error {
	return s.mutate(billID, func(b *models.Bill) error {
		for i := range b.People {
			if b.People[i].ID == personID {
				b.People[i].IsPaid = paid
				return nil
			}
		}
		return fmt.Errorf("person %s: %w", personID, storage.ErrNotFound)
	})
}

func (s *Store) AddItem(ctx context.Context, billID string, item *models.Item) error {
	return s.mutate(billID, func(b *models.Bill) error {
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		if _, exists := b.Item(item.ID); exists {
			return fmt.Errorf("%w: item already on bill: %s", models.ErrValidation, item.ID)
		}
		b.Items = append(b.Items, *item)
		return nil
	})
}

func (s *Store) UpdateItem(ctx context.Context, billID string, item *models.Item) error {
	return s.mutate(billID, func(b *models.Bill) error {
		for i := range b.Items {
			if b.Items[i].ID == item.ID {
				b.Items[i] = *item
				return nil
			}
		}
		return fmt.Errorf("item %s: %w", item.ID, storage.ErrNotFound)
	})
}

func (s *Store) RemoveItem(ctx context.Context, billID, itemID string) error {
	return s.mutate(billID, func(b *models.Bill) error {
		idx := -1
		for i, it := range b.Items {
			if it.ID == itemID {
				idx = i
			}
		}
		if idx < 0 {
			return fmt.Errorf("item %s: %w", itemID, storage.ErrNotFound)
		}
		b.Items = append(b.Items[:idx], b.Items[idx+1:]...)
		b.Shares = filterShares(b.Shares, func(sh models.ItemShare) bool { return sh.ItemID != itemID })
		return nil
	})
}

func (s *Store) SetShare(ctx context.Context, billID string, share models.ItemShare) error {
	return s.mutate(billID, func(b *models.Bill) error {
		if _, ok := b.Item(share.ItemID); !ok {
			return fmt.Errorf("item %s: %w", share.ItemID, storage.ErrNotFound)
		}
		if _, ok := b.Person(share.PersonID); !ok {
			return fmt.Errorf("person %s: %w", share.PersonID, storage.ErrNotFound)
		}
		for i := range b.Shares {
			if b.Shares[i].ItemID == share.ItemID && b.Shares[i].PersonID == share.PersonID {
				b.Shares[i].Weight = share.Weight
				return nil
			}
		}
		b.Shares = append(b.Shares, share)
		return nil
	})
}

func (s *Store) RemoveShare(ctx context.Context, billID, itemID, personID string) error {
	return s.mutate(billID, func(b *models.Bill) error {
		before := len(b.Shares)
		b.Shares = filterShares(b.Shares, func(sh models.ItemShare) bool {
			return sh.ItemID != itemID || sh.PersonID != personID
		})
		if len(b.Shares) == before {
			return fmt.Errorf("share of %s by %s: %w", itemID, personID, storage.ErrNotFound)
		}
		return nil
	})
}

// mutate applies fn to a copy of the bill and commits it only if fn succeeds.
func (s *Store) mutate(billID string, fn func(b *models.Bill) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.bills[billID]
	if !ok {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	next := cloneBill(current)
	if err := fn(next); err != nil {
		return err
	}
	next.UpdatedAt = s.now().Unix()
	s.bills[billID] = next
	return nil
}

func filterShares(shares []models.ItemShare, keep func(models.ItemShare) bool) []models.ItemShare {
	out := shares[:0]
	for _, sh := range shares {
		if keep(sh) {
			out = append(out, sh)
		}
	}
	return out
}

func cloneBill(b *models.Bill) *models.Bill {
	c := *b
	c.Items = append([]models.Item(nil), b.Items...)
	c.People = append([]models.Person(nil), b.People...)
	c.Shares = append([]models.ItemShare(nil), b.Shares...)
	return &c
}
