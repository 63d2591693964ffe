package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rl1809/pantry/internal/core/domain"
)

type UserRepository struct {
	db *sql.DB
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, `SELECT id, email, full_name, created_at FROM users WHERE id = ?`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, `SELECT id, email, full_name, created_at FROM users WHERE email = ?`, email)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.FullName, &u.CreatedAt)
	if err != nil {
		return domain.User{}, translateError(err)
	}
	return u, nil
}

// Create returns domain.ErrConflict when the email is already registered.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, full_name, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, user.FullName, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", translateError(err))
	}
	return nil
}
