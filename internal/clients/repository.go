package clients

import (
	"context"
	"database/sql"

	"github.com/joao-fontenele/bizops-backend/internal/apperr"
	"github.com/joao-fontenele/bizops-backend/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, contact_number, address
		FROM clients
		ORDER BY id
	`)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer func() { _ = rows.Close() }()

	clients := []domain.Client{}
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.ContactNumber, &c.Address); err != nil {
			return nil, apperr.Storage(err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}

	return clients, nil
}

// Create always inserts a new row; identical clients are not deduplicated.
func (r *Repository) Create(ctx context.Context, c domain.Client) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO clients (name, email, contact_number, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, c.Name, c.Email, c.ContactNumber, c.Address).Scan(&id)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	return id, nil
}
