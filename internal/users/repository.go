package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/joao-fontenele/bizops-backend/internal/apperr"
	"github.com/joao-fontenele/bizops-backend/internal/database"
	"github.com/joao-fontenele/bizops-backend/internal/domain"
)

var (
	ErrEmailTaken   = apperr.New(apperr.CodeConflict, "Email already registered")
	errUserNotFound = apperr.NotFound("user not found")
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, email, passwordHash string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password)
		VALUES ($1, $2)
		RETURNING id
	`, email, passwordHash).Scan(&id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, ErrEmailTaken.WithCause(err)
		}
		return 0, apperr.Storage(err)
	}
	return id, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password
		FROM users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errUserNotFound
		}
		return nil, apperr.Storage(err)
	}
	return &u, nil
}
