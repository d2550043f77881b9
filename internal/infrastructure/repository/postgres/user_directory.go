package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkozhevin/docvault/internal/core/domain"
)

// UserDirectory is a read-only view over the account table; the document
// core only ever resolves recipients, it never mutates users.
type UserDirectory struct {
	db *sql.DB
}

func NewUserDirectory(db *sql.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (r *UserDirectory) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, `SELECT id, name, email, created_at FROM users WHERE id = $1`, id)
}

func (r *UserDirectory) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, `SELECT id, name, email, created_at FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *UserDirectory) get(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
