package orders

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/joao-fontenele/bizops-backend/internal/apperr"
	"github.com/joao-fontenele/bizops-backend/internal/domain"
)

// Store runs placement steps inside a single transaction. fn's error rolls
// the transaction back; a nil return commits it.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx PlacementTx) error) error
}

// PlacementTx is the set of statements the placement workflow issues.
type PlacementTx interface {
	// LockProduct returns the inventory row for productName and holds a row
	// lock on it until the transaction ends.
	LockProduct(ctx context.Context, productName string) (domain.InventoryItem, error)
	InsertOrder(ctx context.Context, order domain.Order) (int64, error)
	InsertInvoice(ctx context.Context, invoice domain.Invoice) (int64, error)
	// DecrementStock subtracts quantity only if stock stays non-negative.
	DecrementStock(ctx context.Context, itemID int64, quantity int) error
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx PlacementTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Storage(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&postgresTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperr.Storage(fmt.Errorf("commit: %w", err))
	}
	return nil
}

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) LockProduct(ctx context.Context, productName string) (domain.InventoryItem, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, product_name, stock_quantity, reorder_threshold, price
		FROM inventory
		WHERE product_name = $1
		FOR UPDATE
	`, productName)
	if err != nil {
		return domain.InventoryItem{}, apperr.ErrProductNotFound.WithCause(err)
	}
	defer func() { _ = rows.Close() }()

	var items []domain.InventoryItem
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(&item.ID, &item.ProductName, &item.StockQuantity, &item.ReorderThreshold, &item.Price); err != nil {
			return domain.InventoryItem{}, apperr.ErrProductNotFound.WithCause(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.InventoryItem{}, apperr.ErrProductNotFound.WithCause(err)
	}

	switch len(items) {
	case 0:
		return domain.InventoryItem{}, apperr.ErrProductNotFound
	case 1:
		return items[0], nil
	default:
		return domain.InventoryItem{}, apperr.ErrAmbiguousProduct
	}
}

func (t *postgresTx) InsertOrder(ctx context.Context, order domain.Order) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO orders (client_name, product_name, quantity, order_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, order.ClientName, order.ProductName, order.Quantity, order.OrderDate, order.Status).Scan(&id)
	if err != nil {
		return 0, apperr.Storage(fmt.Errorf("insert order: %w", err))
	}
	return id, nil
}

func (t *postgresTx) InsertInvoice(ctx context.Context, invoice domain.Invoice) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO invoices (order_id, amount, due_date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, invoice.OrderID, invoice.Amount, invoice.DueDate, invoice.Status).Scan(&id)
	if err != nil {
		return 0, apperr.Storage(fmt.Errorf("insert invoice: %w", err))
	}
	return id, nil
}

func (t *postgresTx) DecrementStock(ctx context.Context, itemID int64, quantity int) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE inventory
		SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND stock_quantity >= $2
	`, itemID, quantity)
	if err != nil {
		return apperr.Storage(fmt.Errorf("decrement stock: %w", err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperr.Storage(fmt.Errorf("decrement stock: %w", err))
	}
	if rowsAffected == 0 {
		return apperr.ErrInsufficientStock
	}
	return nil
}
