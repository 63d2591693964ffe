package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rl1809/pantry/internal/core/domain"
)

type PantryRepository struct {
	db *sql.DB
}

const pantrySelect = `
	SELECT pi.user_id, pi.product_id, p.name, COALESCE(p.unit, ''), pi.quantity, pi.version, pi.updated_at
	FROM pantry_items pi
	JOIN products p ON p.id = pi.product_id`

func (r *PantryRepository) AddQuantity(ctx context.Context, userID, productID string, delta decimal.Decimal) (domain.PantryItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.PantryItem{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pantry_items (user_id, product_id, quantity, version)
		VALUES (?, ?, ?, 1)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity), version = version + 1`,
		userID, productID, delta,
	)
	if err != nil {
		return domain.PantryItem{}, fmt.Errorf("upsert pantry item: %w", translateError(err))
	}

	item, err := scanPantryItem(tx.QueryRowContext(ctx, pantrySelect+` WHERE pi.user_id = ? AND pi.product_id = ?`, userID, productID))
	if err != nil {
		return domain.PantryItem{}, fmt.Errorf("read pantry item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.PantryItem{}, fmt.Errorf("commit: %w", translateError(err))
	}
	return item, nil
}

func (r *PantryRepository) SetQuantity(ctx context.Context, userID, productID string, quantity decimal.Decimal) (domain.PantryItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.PantryItem{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var version int
	err = tx.QueryRowContext(ctx, `
		SELECT version FROM pantry_items
		WHERE user_id = ? AND product_id = ? FOR UPDATE`,
		userID, productID,
	).Scan(&version)
	if err != nil {
		return domain.PantryItem{}, translateError(err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE pantry_items
		SET quantity = ?, version = version + 1
		WHERE user_id = ? AND product_id = ? AND version = ?`,
		quantity, userID, productID, version,
	)
	if err != nil {
		return domain.PantryItem{}, fmt.Errorf("update pantry item: %w", translateError(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.PantryItem{}, domain.ErrConflict
	}

	item, err := scanPantryItem(tx.QueryRowContext(ctx, pantrySelect+` WHERE pi.user_id = ? AND pi.product_id = ?`, userID, productID))
	if err != nil {
		return domain.PantryItem{}, fmt.Errorf("read pantry item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.PantryItem{}, fmt.Errorf("commit: %w", translateError(err))
	}
	return item, nil
}

func (r *PantryRepository) Delete(ctx context.Context, userID, productID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pantry_items WHERE user_id = ? AND product_id = ?`, userID, productID)
	if err != nil {
		return fmt.Errorf("delete pantry item: %w", translateError(err))
	}
	return nil
}

func (r *PantryRepository) ListByUser(ctx context.Context, userID string) ([]domain.PantryItem, error) {
	rows, err := r.db.QueryContext(ctx, pantrySelect+` WHERE pi.user_id = ? ORDER BY p.name, pi.product_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query pantry: %w", err)
	}
	defer rows.Close()

	items := make([]domain.PantryItem, 0)
	for rows.Next() {
		item, err := scanPantryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pantry item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPantryItem(row rowScanner) (domain.PantryItem, error) {
	var it domain.PantryItem
	err := row.Scan(&it.UserID, &it.ProductID, &it.ProductName, &it.Unit, &it.Quantity, &it.Version, &it.UpdatedAt)
	if err != nil {
		return domain.PantryItem{}, translateError(err)
	}
	return it, nil
}
