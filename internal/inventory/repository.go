package inventory

import (
	"context"
	"database/sql"

	"github.com/joao-fontenele/bizops-backend/internal/apperr"
	"github.com/joao-fontenele/bizops-backend/internal/database"
	"github.com/joao-fontenele/bizops-backend/internal/domain"
)

var errItemNotFound = apperr.NotFound("Inventory item not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]domain.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_name, stock_quantity, reorder_threshold, price
		FROM inventory
		ORDER BY id
	`)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer func() { _ = rows.Close() }()

	items := []domain.InventoryItem{}
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(&item.ID, &item.ProductName, &item.StockQuantity, &item.ReorderThreshold, &item.Price); err != nil {
			return nil, apperr.Storage(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}

	return items, nil
}

func (r *Repository) Create(ctx context.Context, item domain.InventoryItem) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO inventory (product_name, stock_quantity, reorder_threshold, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, item.ProductName, item.StockQuantity, item.ReorderThreshold, item.Price).Scan(&id)
	if err != nil {
		return 0, classify(err)
	}
	return id, nil
}

func (r *Repository) Update(ctx context.Context, id int64, item domain.InventoryItem) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE inventory
		SET product_name = $2, stock_quantity = $3, reorder_threshold = $4, price = $5
		WHERE id = $1
	`, id, item.ProductName, item.StockQuantity, item.ReorderThreshold, item.Price)
	if err != nil {
		return classify(err)
	}
	return requireAffected(result, errItemNotFound)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM inventory WHERE id = $1`, id)
	if err != nil {
		return apperr.Storage(err)
	}
	return requireAffected(result, errItemNotFound)
}

// AdjustStock subtracts quantity from the named product's stock in a single
// conditional statement. A negative quantity restocks. The update only
// applies when the result stays non-negative.
func (r *Repository) AdjustStock(ctx context.Context, productName string, quantity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE inventory
		SET stock_quantity = stock_quantity - $1
		WHERE product_name = $2 AND stock_quantity - $1 >= 0
	`, quantity, productName)
	if err != nil {
		return apperr.Storage(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperr.Storage(err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM inventory WHERE product_name = $1)`, productName,
	).Scan(&exists); err != nil {
		return apperr.Storage(err)
	}
	if !exists {
		return apperr.ErrProductNotFound
	}
	return apperr.ErrInsufficientStock
}

func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperr.Storage(err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

func classify(err error) error {
	if database.IsUniqueViolation(err) {
		return apperr.Wrap(apperr.CodeConflict, err, "Product name already exists")
	}
	return apperr.Storage(err)
}
