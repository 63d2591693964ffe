package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rl1809/pantry/internal/core/domain"
)

type FavoriteRepository struct {
	db *sql.DB
}

func (r *FavoriteRepository) Add(ctx context.Context, userID, recipeID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, recipe_id) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE user_id = user_id`,
		userID, recipeID,
	)
	if err != nil {
		return fmt.Errorf("insert favorite: %w", translateError(err))
	}
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, recipeID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND recipe_id = ?`, userID, recipeID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", translateError(err))
	}
	return nil
}

// ListByUser returns favorited recipes in the order they were added.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]domain.Recipe, error) {
	return queryRecipes(ctx, r.db, recipeSelect+`
		JOIN favorites f ON f.recipe_id = r.id
		WHERE f.user_id = ?
		ORDER BY f.seq, ri.position`, userID)
}
