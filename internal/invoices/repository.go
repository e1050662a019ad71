package invoices

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/bizops-backend/internal/apperr"
	"github.com/joao-fontenele/bizops-backend/internal/domain"
)

var ErrNoInvoices = apperr.NotFound("No invoices found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]domain.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, amount, due_date, status
		FROM invoices
		ORDER BY id
	`)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer func() { _ = rows.Close() }()

	invoices := []domain.Invoice{}
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(&inv.ID, &inv.OrderID, &inv.Amount, &inv.DueDate, &inv.Status); err != nil {
			return nil, apperr.Storage(err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}

	return invoices, nil
}

// Latest returns the most recently created invoice.
func (r *Repository) Latest(ctx context.Context) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, amount, due_date, status
		FROM invoices
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&inv.ID, &inv.OrderID, &inv.Amount, &inv.DueDate, &inv.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoInvoices
		}
		return nil, apperr.Storage(err)
	}
	return &inv, nil
}

// TotalSales sums every invoice amount. An empty table yields zero.
func (r *Repository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM invoices`).Scan(&total)
	if err != nil {
		return decimal.Zero, apperr.Storage(err)
	}
	return total, nil
}
