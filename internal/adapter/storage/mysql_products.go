package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rl1809/pantry/internal/core/domain"
)

type ProductRepository struct {
	db *sql.DB
}

const productColumns = `id, name, COALESCE(unit, ''), created_at`

func (r *ProductRepository) FindByName(ctx context.Context, name string) (domain.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE name = ?`, domain.NormalizeName(name))
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
}

func (r *ProductRepository) findOne(ctx context.Context, query string, arg any) (domain.Product, error) {
	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&p.ID, &p.Name, &p.Unit, &p.CreatedAt)
	if err != nil {
		return domain.Product{}, translateError(err)
	}
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, product domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, unit, created_at)
		VALUES (?, ?, NULLIF(?, ''), ?)`,
		product.ID, domain.NormalizeName(product.Name), domain.NormalizeUnit(product.Unit), product.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", translateError(err))
	}
	return nil
}
