package orders

import (
	"context"
	"errors"
	"sync"

	"github.com/joao-fontenele/bizops-backend/internal/apperr"
	"github.com/joao-fontenele/bizops-backend/internal/domain"
)

// memStore serializes transactions behind one mutex, standing in for the
// row lock Postgres takes on the inventory row.
type memStore struct {
	mu        sync.Mutex
	inventory []domain.InventoryItem
	orders    []domain.Order
	invoices  []domain.Invoice
	nextID    int64

	failInvoice error
	failOrder   error
}

func newMemStore(items ...domain.InventoryItem) *memStore {
	return &memStore{inventory: items, nextID: 1}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(tx PlacementTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := memState{
		inventory: append([]domain.InventoryItem(nil), s.inventory...),
		orders:    append([]domain.Order(nil), s.orders...),
		invoices:  append([]domain.Invoice(nil), s.invoices...),
	}
	if err := fn(&memTx{store: s}); err != nil {
		s.inventory, s.orders, s.invoices = snapshot.inventory, snapshot.orders, snapshot.invoices
		return err
	}
	return nil
}

type memState struct {
	inventory []domain.InventoryItem
	orders    []domain.Order
	invoices  []domain.Invoice
}

func (s *memStore) stock(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.inventory {
		if item.ProductName == name {
			return item.StockQuantity
		}
	}
	return -1
}

func (s *memStore) counts() (orders, invoices int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders), len(s.invoices)
}

type memTx struct {
	store *memStore
}

func (tx *memTx) LockProduct(_ context.Context, name string) (domain.InventoryItem, error) {
	var found []domain.InventoryItem
	for _, item := range tx.store.inventory {
		if item.ProductName == name {
			found = append(found, item)
		}
	}
	switch len(found) {
	case 0:
		return domain.InventoryItem{}, apperr.ErrProductNotFound
	case 1:
		return found[0], nil
	default:
		return domain.InventoryItem{}, apperr.ErrAmbiguousProduct
	}
}

func (tx *memTx) InsertOrder(_ context.Context, o domain.Order) (int64, error) {
	if tx.store.failOrder != nil {
		return 0, apperr.Storage(tx.store.failOrder)
	}
	o.ID = tx.store.nextID
	tx.store.nextID++
	tx.store.orders = append(tx.store.orders, o)
	return o.ID, nil
}

func (tx *memTx) InsertInvoice(_ context.Context, inv domain.Invoice) (int64, error) {
	if tx.store.failInvoice != nil {
		return 0, apperr.Storage(tx.store.failInvoice)
	}
	inv.ID = tx.store.nextID
	tx.store.nextID++
	tx.store.invoices = append(tx.store.invoices, inv)
	return inv.ID, nil
}

func (tx *memTx) DecrementStock(_ context.Context, itemID int64, qty int) error {
	for i := range tx.store.inventory {
		item := &tx.store.inventory[i]
		if item.ID != itemID {
			continue
		}
		if item.StockQuantity < qty {
			return apperr.ErrInsufficientStock
		}
		item.StockQuantity -= qty
		return nil
	}
	return errors.New("no such inventory row")
}

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []domain.OrderPlacedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	if e, ok := event.(domain.OrderPlacedEvent); ok {
		p.events = append(p.events, e)
	}
	return p.err
}
